package verification

import (
	"context"
	"encoding/json"
	"strings"

	"keymaster/internal/pkg/ai"
)

// Reasons the guest sees. The invalid-document and mismatch texts are fixed
// strings the UI matches on.
const (
	ReasonInvalidDocument = "Invalid document type provided. Please upload a valid government-issued ID."
	ReasonSelfieMismatch  = "Selfie does not match the ID photo. Please try again."
	reasonProviderFailure = "The verification service could not process the documents. Please try again."
	reasonBadModelOutput  = "The verification result could not be interpreted. Please try again."
)

const verifyInstruction = `You are an identity verification assistant for a vacation-rental check-in application. You are given an image of an identity document and, optionally, a selfie photo.

1. Validate the document. Confirm it is a legitimate form of government-issued identification, such as a passport, driver's license, or national ID card. Reject anything that is clearly not an official identity document, including bank cards, payment cards, library cards, or membership cards: set is_id_valid to false for those.
2. If the document is valid, extract the bearer's full name into guest_name.
3. If a selfie image follows the document image, compare the face in the selfie with the face on the document and set is_selfie_match to whether they are the same person. If no selfie is provided, set is_selfie_match to true.
4. Put a brief explanation of your determination in reason.

Produce JSON that strictly follows the output schema.`

var resultSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"is_id_valid": {
			Type:        "boolean",
			Description: "Whether the document is a valid government-issued ID, not a payment card or similar.",
		},
		"is_selfie_match": {
			Type:        "boolean",
			Description: "Whether the selfie face matches the face on the document. True when no selfie was supplied.",
		},
		"guest_name": {
			Type:        "string",
			Description: "The bearer's full name as printed on the document, when readable.",
		},
		"reason": {
			Type:        "string",
			Description: "Brief explanation of the determination.",
		},
	},
	Required: []string{"is_id_valid", "is_selfie_match", "reason"},
}

type modelOutput struct {
	IsIDValid     bool   `json:"is_id_valid"`
	IsSelfieMatch bool   `json:"is_selfie_match"`
	GuestName     string `json:"guest_name"`
	Reason        string `json:"reason"`
}

type Service struct {
	provider ai.Provider
}

func NewService(provider ai.Provider) *Service {
	return &Service{provider: provider}
}

// Verify runs one verification attempt. Input problems (missing document,
// non-image payload) return an error before any model call; every fault
// past that point comes back as a Result with Status Error so callers never
// crash on a provider outage. Retrying is the caller's decision.
func (s *Service) Verify(ctx context.Context, in Input) (Result, error) {
	if len(in.IDScan.Data) == 0 {
		return Result{}, ErrNoDocument
	}
	if !strings.HasPrefix(in.IDScan.MIMEType, "image/") {
		return Result{}, ErrUnsupportedMedia
	}
	if in.Selfie != nil && (len(in.Selfie.Data) == 0 || !strings.HasPrefix(in.Selfie.MIMEType, "image/")) {
		return Result{}, ErrUnsupportedMedia
	}

	media := []ai.MediaPart{in.IDScan}
	if in.Selfie != nil {
		media = append(media, *in.Selfie)
	}

	raw, err := s.provider.GenerateJSON(ctx, ai.GenerateRequest{
		Instruction: verifyInstruction,
		Media:       media,
		Schema:      resultSchema,
	})
	if err != nil {
		return Result{
			IsSelfieMatch: in.Selfie == nil,
			Status:        StatusError,
			Reason:        reasonProviderFailure,
		}, nil
	}

	var out modelOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{
			IsSelfieMatch: in.Selfie == nil,
			Status:        StatusError,
			Reason:        reasonBadModelOutput,
		}, nil
	}

	return s.derive(in, out), nil
}

// derive applies the verification contract on top of whatever the model
// said: the final status and the guest-facing failure reasons are decided
// here, not by the model.
func (s *Service) derive(in Input, out modelOutput) Result {
	res := Result{
		IsIDValid:     out.IsIDValid,
		IsSelfieMatch: out.IsSelfieMatch,
		GuestName:     strings.TrimSpace(out.GuestName),
	}

	// Match is vacuously true when no selfie was supplied.
	if in.Selfie == nil {
		res.IsSelfieMatch = true
	}

	switch {
	case !res.IsIDValid:
		res.Status = StatusFailed
		res.Reason = ReasonInvalidDocument
	case !res.IsSelfieMatch:
		res.Status = StatusFailed
		res.Reason = ReasonSelfieMismatch
	default:
		res.Status = StatusVerified
		res.Reason = out.Reason
		if res.Reason == "" {
			res.Reason = "Document verified."
		}
	}

	return res
}
