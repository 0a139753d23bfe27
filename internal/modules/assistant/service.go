package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"keymaster/internal/domain"
	"keymaster/internal/pkg/ai"
	"keymaster/internal/pkg/wavenc"
)

// CannedCheckoutAnswer is the fast-path reply for checkout-time questions
// when no checkout date is on file. It never touches the model.
const CannedCheckoutAnswer = "Check-out time is typically 11 AM, but please refer to your rental agreement for the exact time."

const genericContext = "This property has general rules. Be respectful and enjoy your stay."

// The instruction pins the model to the supplied context: answer only from
// it, decline when the answer is not in it. Both clauses matter.
const askInstructionFmt = `You are a helpful and friendly assistant for a vacation rental property.
Answer the guest's question based only on the context provided below. Do not make up information. If the answer is not contained in the context, politely say you don't have that information and suggest contacting the host.

Context about the property and the guest's booking:
---
%s
---

Guest's question: %q

Produce JSON that strictly follows the output schema.`

var answerSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"answer": {
			Type:        "string",
			Description: "The answer to the guest's question.",
		},
	},
	Required: []string{"answer"},
}

type Service struct {
	provider   ai.Provider
	properties PropertyGetter
}

func NewService(provider ai.Provider, properties PropertyGetter) *Service {
	return &Service{
		provider:   provider,
		properties: properties,
	}
}

// AskQuestion answers a guest question about a property. Trivial questions
// short-circuit to a canned answer; everything else goes to the model with
// a context assembled from the stored property facts.
func (s *Service) AskQuestion(ctx context.Context, req AskRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	if strings.Contains(strings.ToLower(question), "check-out time") && req.CheckOutDate == "" {
		return CannedCheckoutAnswer, nil
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return "", fmt.Errorf("load property facts: %w", err)
	}

	context := BuildContext(property, req.CheckInDate, req.CheckOutDate)

	raw, err := s.provider.GenerateJSON(ctx, ai.GenerateRequest{
		Instruction: fmt.Sprintf(askInstructionFmt, context, question),
		Schema:      answerSchema,
	})
	if err != nil {
		return "", ErrUnavailable
	}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || strings.TrimSpace(out.Answer) == "" {
		return "", ErrUnavailable
	}

	return out.Answer, nil
}

// BuildContext assembles the model context from stored property facts plus
// the supplied dates. It is a pure function of its inputs: identical
// questions against an unchanged property produce identical contexts.
// A nil property yields a generic fallback instead of failing.
func BuildContext(p *domain.Property, checkInDate, checkOutDate string) string {
	var b strings.Builder

	if p == nil {
		b.WriteString(genericContext)
	} else {
		fmt.Fprintf(&b, "%s is a %s located at %s.", p.Name, strings.ToLower(string(p.Category)), p.Address)
		instr := p.CheckinInstructions
		if instr.WiFiNetwork != "" {
			fmt.Fprintf(&b, " WiFi network: %s, password: %s.", instr.WiFiNetwork, instr.WiFiPassword)
		}
		if instr.DoorCode != "" {
			fmt.Fprintf(&b, " Door code: %s.", instr.DoorCode)
		}
		if len(instr.Rules) > 0 {
			fmt.Fprintf(&b, " House rules: %s", strings.Join(instr.Rules, " "))
		}
	}

	if checkInDate != "" {
		fmt.Fprintf(&b, "\nThe guest's check-in date is %s.", checkInDate)
	}
	if checkOutDate != "" {
		fmt.Fprintf(&b, "\nThe guest's check-out date is %s.", checkOutDate)
	}

	return b.String()
}

// Speak converts text into a playable WAV clip. Nothing is cached: every
// call regenerates the audio.
func (s *Service) Speak(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	pcm, err := s.provider.GenerateSpeech(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}

	return wavenc.EncodeDefault(pcm)
}
