package domain

import "time"

type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "pending"
	ReservationVerified   ReservationStatus = "verified"
	ReservationCheckedIn  ReservationStatus = "checked-in"
	ReservationCheckedOut ReservationStatus = "checked-out"
	ReservationFailed     ReservationStatus = "failed"
)

// statusRank orders the forward-only part of the lifecycle. pending and
// failed share rank 0: a failed verification may be retried.
var statusRank = map[ReservationStatus]int{
	ReservationPending:    0,
	ReservationFailed:     0,
	ReservationVerified:   1,
	ReservationCheckedIn:  2,
	ReservationCheckedOut: 3,
}

// Regresses reports whether moving from the current status to next would
// move the reservation backwards. The check-in flow never regresses status.
func (s ReservationStatus) Regresses(next ReservationStatus) bool {
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt < cur
}

type Reservation struct {
	BookingReference string            `json:"booking_reference"`
	PropertyID       string            `json:"property_id" validate:"required"`
	GuestName        string            `json:"guest_name" validate:"required"`
	CheckInDate      string            `json:"check_in_date" validate:"required"`
	CheckOutDate     string            `json:"check_out_date" validate:"required"`
	Status           ReservationStatus `json:"status"`

	// Reconciliation trail for the optimistic verification advance: the
	// wizard submits and moves on, the real adapter outcome lands here.
	VerificationPending bool   `json:"verification_pending"`
	VerificationReason  string `json:"verification_reason,omitempty"`
	VerifiedName        string `json:"verified_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
