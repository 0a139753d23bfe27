package assistant

import (
	"context"

	"keymaster/internal/domain"
)

// PropertyGetter is the slice of the store the assistant needs. Facts come
// from here, never from tables hardcoded in the adapter.
type PropertyGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

// ChatSessionStore lets the websocket chat ride on a check-in session:
// it resolves the session's booking context and accumulates the transcript.
type ChatSessionStore interface {
	ChatContext(sessionID string) (propertyID, checkInDate, checkOutDate string, ok bool)
	AppendChatMessage(sessionID string, msg domain.ChatMessage) bool
}
