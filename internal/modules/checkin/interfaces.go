package checkin

import (
	"context"

	"keymaster/internal/domain"
	"keymaster/internal/modules/verification"
)

// ReservationStore is the wizard's slice of the store. Lookups signal
// absence with (nil, nil), not errors.
type ReservationStore interface {
	GetByReference(ctx context.Context, ref string) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, ref string, status domain.ReservationStatus) error
	MarkVerificationPending(ctx context.Context, ref string) error
	RecordVerificationOutcome(ctx context.Context, ref string, status domain.ReservationStatus, reason, verifiedName string) error
}

type PropertyStore interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

// Verifier is the identity-verification adapter as the wizard sees it.
type Verifier interface {
	Verify(ctx context.Context, in verification.Input) (verification.Result, error)
}

// ChatCloser lets the wizard end a session's assistant chat when the stay
// is over. Optional; a nil closer means no chat transport is attached.
type ChatCloser interface {
	CloseSession(sessionID string)
}
