package verification

import "keymaster/internal/pkg/ai"

// Input is one verification attempt: the identity document scan
// (mandatory) and an optional live portrait.
type Input struct {
	IDScan ai.MediaPart
	Selfie *ai.MediaPart
}

type Status string

const (
	StatusVerified Status = "Verified"
	StatusFailed   Status = "Failed"
	StatusError    Status = "Error"
)

// Result is the typed outcome of a verification attempt. It is transient:
// the check-in flow consumes it to pick the next step, and the
// reconciliation path persists only its distilled fields.
type Result struct {
	IsIDValid     bool   `json:"is_id_valid"`
	IsSelfieMatch bool   `json:"is_selfie_match"`
	Status        Status `json:"verification_status"`
	Reason        string `json:"reason"`
	GuestName     string `json:"guest_name,omitempty"`
}
