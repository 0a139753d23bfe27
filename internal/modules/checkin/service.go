package checkin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"keymaster/internal/domain"
	"keymaster/internal/modules/verification"
)

// provisionalReason marks the optimistic advance: the wizard moves on while
// the real adapter call is still in flight.
const provisionalReason = "Verification is processing in the background."

type Service struct {
	reservations ReservationStore
	properties   PropertyStore
	verifier     Verifier
	sessions     *Manager
	chat         ChatCloser

	// Upper bound on the background verification call.
	verifyTimeout time.Duration
}

func NewService(
	reservations ReservationStore,
	properties PropertyStore,
	verifier Verifier,
	sessions *Manager,
	chat ChatCloser,
	verifyTimeout time.Duration,
) *Service {
	if verifyTimeout <= 0 {
		verifyTimeout = 45 * time.Second
	}
	return &Service{
		reservations:  reservations,
		properties:    properties,
		verifier:      verifier,
		sessions:      sessions,
		chat:          chat,
		verifyTimeout: verifyTimeout,
	}
}

// LookupResult is what the guest gets back from a booking-reference lookup:
// a fresh session plus the property and reservation it is bound to.
type LookupResult struct {
	Session     Session
	Property    *domain.Property
	Reservation *domain.Reservation
}

// Lookup resolves a booking reference into a new wizard session. An unknown
// reference is the one fatal guest-facing condition; it happens before any
// session exists.
func (s *Service) Lookup(ctx context.Context, bookingRef string) (*LookupResult, error) {
	res, err := s.reservations.GetByReference(ctx, bookingRef)
	if err != nil {
		return nil, fmt.Errorf("reservation lookup: %w", err)
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}

	property, err := s.properties.GetByID(ctx, res.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("property lookup: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	session := NewSession(uuid.NewString(), res)
	s.sessions.Put(session)

	return &LookupResult{
		Session:     snapshot(session),
		Property:    property,
		Reservation: res,
	}, nil
}

func (s *Service) Get(sessionID string) (Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) Start(sessionID string) (Session, error) {
	return s.sessions.Update(sessionID, func(sess *Session) error {
		return sess.Start()
	})
}

func (s *Service) AdvanceVerifySub(sessionID string, to VerifySubStep) (Session, error) {
	return s.sessions.Update(sessionID, func(sess *Session) error {
		return sess.AdvanceVerifySub(to)
	})
}

// SubmitVerification packages the captured artifacts and fires the
// verification adapter. The wizard does not block on the adapter: it
// advances optimistically with a provisional result and reconciles the true
// outcome into the store when the call lands. A session that has since
// moved on just discards the late result; the store write still happens, so
// the host dashboard always shows whether access was granted on a
// provisional or a confirmed verification.
func (s *Service) SubmitVerification(ctx context.Context, sessionID string, in verification.Input) (Session, error) {
	// Local input validation happens before any adapter call. The media
	// checks mirror the verifier's own: a bad upload must fail here as a
	// correctable 400, not inside the background reconcile where it would
	// land as a failed reservation.
	if len(in.IDScan.Data) == 0 {
		return Session{}, verification.ErrNoDocument
	}
	if !strings.HasPrefix(in.IDScan.MIMEType, "image/") {
		return Session{}, verification.ErrUnsupportedMedia
	}
	if in.Selfie != nil && (len(in.Selfie.Data) == 0 || !strings.HasPrefix(in.Selfie.MIMEType, "image/")) {
		return Session{}, verification.ErrUnsupportedMedia
	}

	session, err := s.sessions.Update(sessionID, func(sess *Session) error {
		if sess.Step != StepVerification {
			return ErrInvalidTransition
		}
		sess.VerifyStep = SubStepSubmitting
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	if err := s.reservations.MarkVerificationPending(ctx, session.BookingReference); err != nil {
		return Session{}, fmt.Errorf("mark verification pending: %w", err)
	}

	// Optimistic advance: provisional Verified carrying the reservation's
	// guest name until the real result extracts one.
	session, _ = s.sessions.Update(sessionID, func(sess *Session) error {
		sess.ApplyVerification(verification.Result{
			IsIDValid:     true,
			IsSelfieMatch: true,
			Status:        verification.StatusVerified,
			Reason:        provisionalReason,
			GuestName:     sess.GuestName,
		}, true)
		return nil
	})

	go s.reconcileVerification(session.ID, session.BookingReference, in)

	return session, nil
}

// reconcileVerification runs the real adapter call in the background and
// lands its outcome in the store. The session is only annotated, never
// moved: by the time this returns the guest may be several steps ahead.
func (s *Service) reconcileVerification(sessionID, bookingRef string, in verification.Input) {
	ctx, cancel := context.WithTimeout(context.Background(), s.verifyTimeout)
	defer cancel()

	result, err := s.verifier.Verify(ctx, in)
	if err != nil {
		result = verification.Result{
			Status: verification.StatusError,
			Reason: fmt.Sprintf("verification could not run: %v", err),
		}
	}

	status := domain.ReservationFailed
	if result.Status == verification.StatusVerified {
		status = domain.ReservationVerified
	}

	if err := s.reservations.RecordVerificationOutcome(
		context.Background(), bookingRef, status, result.Reason, result.GuestName,
	); err != nil {
		log.Printf("verification_reconcile booking_ref=%s error=%q", bookingRef, err)
	}

	s.sessions.Update(sessionID, func(sess *Session) error {
		sess.VerificationProvisional = false
		if result.Status == verification.StatusVerified && result.GuestName != "" {
			sess.GuestName = result.GuestName
		}
		return nil
	})

	log.Printf("verification_reconcile booking_ref=%s status=%s", bookingRef, result.Status)
}

// Contract renders the property's agreement for the session's guest.
func (s *Service) Contract(ctx context.Context, sessionID string) (string, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	if session.Step != StepContract && session.Step != StepInstructions && session.Step != StepCheckout {
		return "", ErrInvalidTransition
	}

	property, res, err := s.load(ctx, &session)
	if err != nil {
		return "", err
	}

	guestName := session.GuestName
	if guestName == "" {
		guestName = res.GuestName
	}

	return RenderContract(property, res, guestName), nil
}

func (s *Service) Sign(sessionID, signatureData string, agreed bool) (Session, error) {
	return s.sessions.Update(sessionID, func(sess *Session) error {
		return sess.Sign(signatureData, agreed)
	})
}

// Instructions returns the access package once the wizard has reached the
// instructions step.
func (s *Service) Instructions(ctx context.Context, sessionID string) (*domain.Property, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Step != StepInstructions && session.Step != StepCheckout {
		return nil, ErrInvalidTransition
	}

	property, _, err := s.load(ctx, &session)
	if err != nil {
		return nil, err
	}
	return property, nil
}

// Checkout is the terminal transition: it persists the checked-out status
// and leaves the session in its final step.
func (s *Service) Checkout(ctx context.Context, sessionID string) (Session, error) {
	session, err := s.sessions.Update(sessionID, func(sess *Session) error {
		return sess.ProceedToCheckout()
	})
	if err != nil {
		return Session{}, err
	}

	if err := s.reservations.UpdateStatus(ctx, session.BookingReference, domain.ReservationCheckedOut); err != nil {
		return Session{}, fmt.Errorf("persist checkout: %w", err)
	}

	if s.chat != nil {
		s.chat.CloseSession(session.ID)
	}

	log.Printf("checkin_complete booking_ref=%s", session.BookingReference)
	return session, nil
}

func (s *Service) load(ctx context.Context, session *Session) (*domain.Property, *domain.Reservation, error) {
	res, err := s.reservations.GetByReference(ctx, session.BookingReference)
	if err != nil {
		return nil, nil, err
	}
	if res == nil {
		return nil, nil, ErrReservationNotFound
	}

	property, err := s.properties.GetByID(ctx, session.PropertyID)
	if err != nil {
		return nil, nil, err
	}
	if property == nil {
		return nil, nil, ErrPropertyNotFound
	}

	return property, res, nil
}
