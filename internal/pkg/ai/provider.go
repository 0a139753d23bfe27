package ai

import (
	"context"
	"encoding/json"
)

// MediaPart is a piece of inline binary input for the model, typically an
// image the guest uploaded.
type MediaPart struct {
	MIMEType string
	Data     []byte
}

// Schema describes the JSON shape the model must produce. It is a small
// provider-neutral subset; the concrete client translates it to whatever
// the backing API expects.
type Schema struct {
	Type        string // object | string | boolean | array
	Description string
	Enum        []string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
}

// GenerateRequest is one structured-output call: an instruction, optional
// inline media, and the schema the reply must conform to.
type GenerateRequest struct {
	Instruction string
	Media       []MediaPart
	Schema      *Schema
}

// Provider is the single inference primitive every adapter is built on.
// A call either yields a complete typed output or fails; there are no
// partial results and no retries at this layer.
type Provider interface {
	GenerateJSON(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}
