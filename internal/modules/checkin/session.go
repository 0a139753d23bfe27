package checkin

import (
	"time"

	"keymaster/internal/domain"
	"keymaster/internal/modules/verification"
)

type Step string

const (
	StepWelcome      Step = "welcome"
	StepVerification Step = "verification"
	StepContract     Step = "contract"
	StepInstructions Step = "instructions"
	StepCheckout     Step = "checkout"
)

// VerifySubStep is the sub-flow inside the verification step. The document
// capture is mandatory; selfie and liveness are optional and skippable.
type VerifySubStep string

const (
	SubStepID         VerifySubStep = "id"
	SubStepSelfie     VerifySubStep = "selfie"
	SubStepLiveness   VerifySubStep = "liveness"
	SubStepSubmitting VerifySubStep = "submitting"
)

// Session is the whole wizard state as one serializable value: the current
// step tag plus everything accumulated along the way. It can be driven and
// inspected headlessly, without any rendering layer.
type Session struct {
	ID               string        `json:"id"`
	BookingReference string        `json:"booking_reference"`
	PropertyID       string        `json:"property_id"`
	Step             Step          `json:"step"`
	VerifyStep       VerifySubStep `json:"verify_step,omitempty"`

	GuestName    string `json:"guest_name"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Verified     bool   `json:"verified"`

	// True between the optimistic advance and the moment the real
	// verification outcome lands.
	VerificationProvisional bool `json:"verification_provisional"`

	SignatureData string `json:"signature_data,omitempty"`
	Agreed        bool   `json:"agreed"`

	Messages []domain.ChatMessage `json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryStep derives where the wizard resumes from the persisted
// reservation status.
func EntryStep(status domain.ReservationStatus) Step {
	switch status {
	case domain.ReservationPending, domain.ReservationFailed:
		return StepVerification
	case domain.ReservationVerified, domain.ReservationCheckedIn:
		return StepInstructions
	case domain.ReservationCheckedOut:
		return StepCheckout
	default:
		return StepWelcome
	}
}

// NewSession builds a wizard session for a looked-up reservation, entering
// at the step its persisted status dictates.
func NewSession(id string, res *domain.Reservation) *Session {
	now := time.Now()
	return &Session{
		ID:               id,
		BookingReference: res.BookingReference,
		PropertyID:       res.PropertyID,
		Step:             EntryStep(res.Status),
		VerifyStep:       SubStepID,
		GuestName:        res.GuestName,
		CheckInDate:      res.CheckInDate,
		CheckOutDate:     res.CheckOutDate,
		Verified:         res.Status == domain.ReservationVerified || res.Status == domain.ReservationCheckedIn,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Start moves welcome → verification on the explicit start action.
func (s *Session) Start() error {
	if s.Step != StepWelcome {
		return ErrInvalidTransition
	}
	s.Step = StepVerification
	s.VerifyStep = SubStepID
	s.touch()
	return nil
}

// AdvanceVerifySub moves within the verification sub-flow. Forward moves
// may skip the optional selfie and liveness sub-steps; backward moves are
// the sub-flow's explicit back affordance and never touch persisted
// reservation status. Entering "submitting" is reserved for SubmitVerification.
func (s *Session) AdvanceVerifySub(to VerifySubStep) error {
	if s.Step != StepVerification {
		return ErrInvalidTransition
	}
	switch to {
	case SubStepID, SubStepSelfie, SubStepLiveness:
	default:
		// "submitting" is entered by the submit action, not navigation.
		return ErrInvalidTransition
	}
	s.VerifyStep = to
	s.touch()
	return nil
}

// ApplyVerification decides the one conditional gate of the verification
// step: only a Verified result carrying a non-empty guest name advances to
// the contract. Anything else leaves the wizard in place for a retry.
func (s *Session) ApplyVerification(res verification.Result, provisional bool) bool {
	if s.Step != StepVerification {
		return false
	}
	if res.Status != verification.StatusVerified || res.GuestName == "" {
		s.VerifyStep = SubStepID
		s.touch()
		return false
	}

	s.GuestName = res.GuestName
	s.Verified = true
	s.VerificationProvisional = provisional
	s.Step = StepContract
	s.touch()
	return true
}

// Sign gates contract → instructions on both conditions independently:
// a non-empty signature AND explicit agreement. One without the other
// leaves the wizard at the contract.
func (s *Session) Sign(signatureData string, agreed bool) error {
	if s.Step != StepContract {
		return ErrInvalidTransition
	}
	if signatureData == "" {
		return ErrSignatureRequired
	}
	if !agreed {
		return ErrAgreementRequired
	}

	s.SignatureData = signatureData
	s.Agreed = true
	s.Step = StepInstructions
	s.touch()
	return nil
}

// ProceedToCheckout moves instructions → checkout on the explicit action.
func (s *Session) ProceedToCheckout() error {
	if s.Step != StepInstructions {
		return ErrInvalidTransition
	}
	s.Step = StepCheckout
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
