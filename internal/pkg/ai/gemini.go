package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	genai "google.golang.org/genai"
)

const (
	defaultTextModel = "gemini-2.0-flash"
	defaultTTSModel  = "gemini-2.5-flash-preview-tts"
	defaultVoice     = "Algenib"
)

// Gemini implements Provider against the Google Gemini API.
type Gemini struct {
	client    *genai.Client
	textModel string
	ttsModel  string
	voice     string
}

type GeminiOption func(*Gemini)

func WithTextModel(model string) GeminiOption {
	return func(g *Gemini) { g.textModel = model }
}

func WithTTSModel(model string) GeminiOption {
	return func(g *Gemini) { g.ttsModel = model }
}

func WithVoice(voice string) GeminiOption {
	return func(g *Gemini) { g.voice = voice }
}

func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &Gemini{
		client:    client,
		textModel: defaultTextModel,
		ttsModel:  defaultTTSModel,
		voice:     defaultVoice,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gemini) GenerateJSON(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Instruction)}
	for _, m := range req.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Schema != nil {
		config.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.textModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini returned an empty response")
	}
	return json.RawMessage(text), nil
}

// GenerateSpeech returns the raw PCM samples for the spoken text. The TTS
// models reply with 16-bit mono PCM at 24 kHz; wrapping it into a playable
// container is the caller's job.
func (g *Gemini) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.ttsModel,
		genai.Text(text),
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini tts: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("no audio returned from the tts model")
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "string":
		out.Type = genai.TypeString
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	}

	if len(s.Enum) > 0 {
		out.Enum = s.Enum
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	return out
}
