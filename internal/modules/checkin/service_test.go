package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"keymaster/internal/domain"
	"keymaster/internal/modules/verification"
	"keymaster/internal/pkg/ai"
)

type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) GetByReference(ctx context.Context, ref string) (*domain.Reservation, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) UpdateStatus(ctx context.Context, ref string, status domain.ReservationStatus) error {
	args := m.Called(ctx, ref, status)
	return args.Error(0)
}

func (m *MockReservationStore) MarkVerificationPending(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockReservationStore) RecordVerificationOutcome(ctx context.Context, ref string, status domain.ReservationStatus, reason, verifiedName string) error {
	args := m.Called(ctx, ref, status, reason, verifiedName)
	return args.Error(0)
}

type MockPropertyStore struct {
	mock.Mock
}

func (m *MockPropertyStore) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, in verification.Input) (verification.Result, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(verification.Result), args.Error(1)
}

type MockChatCloser struct {
	mock.Mock
}

func (m *MockChatCloser) CloseSession(sessionID string) {
	m.Called(sessionID)
}

func pendingReservation() *domain.Reservation {
	return &domain.Reservation{
		BookingReference: "AIRBNB-11A",
		PropertyID:       "paradise-villa",
		GuestName:        "Elon Tusk",
		CheckInDate:      "2024-09-01",
		CheckOutDate:     "2024-09-08",
		Status:           domain.ReservationPending,
	}
}

func villaProperty() *domain.Property {
	return &domain.Property{
		ID:               "paradise-villa",
		Name:             "Paradise Villa",
		Category:         domain.CategoryVilla,
		Address:          "123 Ocean Drive, Miami, FL",
		ContractTemplate: "Agreement for {{guest_name}} at {{property_name}}.",
		CheckinInstructions: domain.CheckinInstructions{
			WiFiNetwork:  "Villa_WiFi",
			WiFiPassword: "Sunshine123!",
			DoorCode:     "1984",
			Rules:        []string{"No smoking indoors."},
		},
	}
}

func idScanInput() verification.Input {
	return verification.Input{
		IDScan: ai.MediaPart{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	}
}

func TestLookup_UnknownReferenceIsFatal(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("GetByReference", mock.Anything, "NOPE").Return(nil, nil)

	svc := NewService(reservations, new(MockPropertyStore), new(MockVerifier), NewManager(), nil, time.Second)
	_, err := svc.Lookup(context.Background(), "NOPE")

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestLookup_EntersAtDerivedStep(t *testing.T) {
	reservations := new(MockReservationStore)
	res := pendingReservation()
	res.Status = domain.ReservationVerified
	reservations.On("GetByReference", mock.Anything, "AIRBNB-11A").Return(res, nil)

	properties := new(MockPropertyStore)
	properties.On("GetByID", mock.Anything, "paradise-villa").Return(villaProperty(), nil)

	svc := NewService(reservations, properties, new(MockVerifier), NewManager(), nil, time.Second)
	result, err := svc.Lookup(context.Background(), "AIRBNB-11A")

	require.NoError(t, err)
	assert.Equal(t, StepInstructions, result.Session.Step)
	assert.True(t, result.Session.Verified)
	assert.NotEmpty(t, result.Session.ID)
}

func TestSubmitVerification_OptimisticAdvanceAndReconcile(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("MarkVerificationPending", mock.Anything, "AIRBNB-11A").Return(nil)

	recorded := make(chan struct{})
	reservations.On("RecordVerificationOutcome",
		mock.Anything, "AIRBNB-11A", domain.ReservationVerified, mock.Anything, "Ada Lovelace").
		Run(func(mock.Arguments) { close(recorded) }).
		Return(nil)

	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, mock.Anything).Return(verification.Result{
		IsIDValid:     true,
		IsSelfieMatch: true,
		Status:        verification.StatusVerified,
		Reason:        "valid passport",
		GuestName:     "Ada Lovelace",
	}, nil)

	manager := NewManager()
	manager.Put(NewSession("sess-1", pendingReservation()))

	svc := NewService(reservations, new(MockPropertyStore), verifier, manager, nil, time.Second)
	session, err := svc.SubmitVerification(context.Background(), "sess-1", idScanInput())

	// The wizard advances immediately, provisionally.
	require.NoError(t, err)
	assert.Equal(t, StepContract, session.Step)
	assert.True(t, session.VerificationProvisional)

	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("verification outcome was never recorded")
	}

	// After reconciliation the session reflects the confirmed outcome.
	assert.Eventually(t, func() bool {
		s, ok := manager.Get("sess-1")
		return ok && !s.VerificationProvisional && s.GuestName == "Ada Lovelace"
	}, 2*time.Second, 10*time.Millisecond)

	reservations.AssertExpectations(t)
	verifier.AssertExpectations(t)
}

func TestSubmitVerification_FailedOutcomeLandsInStore(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("MarkVerificationPending", mock.Anything, "AIRBNB-11A").Return(nil)

	recorded := make(chan struct{})
	reservations.On("RecordVerificationOutcome",
		mock.Anything, "AIRBNB-11A", domain.ReservationFailed, verification.ReasonInvalidDocument, "").
		Run(func(mock.Arguments) { close(recorded) }).
		Return(nil)

	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, mock.Anything).Return(verification.Result{
		Status: verification.StatusFailed,
		Reason: verification.ReasonInvalidDocument,
	}, nil)

	manager := NewManager()
	manager.Put(NewSession("sess-1", pendingReservation()))

	svc := NewService(reservations, new(MockPropertyStore), verifier, manager, nil, time.Second)
	session, err := svc.SubmitVerification(context.Background(), "sess-1", idScanInput())

	// The optimistic advance happens regardless; the failed outcome is
	// surfaced through the store for the host dashboard to review.
	require.NoError(t, err)
	assert.Equal(t, StepContract, session.Step)

	select {
	case <-recorded:
	case <-time.After(2 * time.Second):
		t.Fatal("verification outcome was never recorded")
	}
}

func TestSubmitVerification_RequiresDocument(t *testing.T) {
	manager := NewManager()
	manager.Put(NewSession("sess-1", pendingReservation()))

	svc := NewService(new(MockReservationStore), new(MockPropertyStore), new(MockVerifier), manager, nil, time.Second)
	_, err := svc.SubmitVerification(context.Background(), "sess-1", verification.Input{})

	assert.ErrorIs(t, err, verification.ErrNoDocument)
}

func TestSubmitVerification_RejectsNonImageLocally(t *testing.T) {
	reservations := new(MockReservationStore)
	verifier := new(MockVerifier)

	manager := NewManager()
	manager.Put(NewSession("sess-1", pendingReservation()))

	svc := NewService(reservations, new(MockPropertyStore), verifier, manager, nil, time.Second)
	_, err := svc.SubmitVerification(context.Background(), "sess-1", verification.Input{
		IDScan: ai.MediaPart{MIMEType: "application/pdf", Data: []byte("%PDF-1.4")},
	})

	assert.ErrorIs(t, err, verification.ErrUnsupportedMedia)

	// Nothing left the process: the reservation was never flagged pending
	// and the session did not advance.
	reservations.AssertNotCalled(t, "MarkVerificationPending", mock.Anything, mock.Anything)
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)

	session, _ := svc.Get("sess-1")
	assert.Equal(t, StepVerification, session.Step)
}

func TestSubmitVerification_RejectsNonImageSelfieLocally(t *testing.T) {
	reservations := new(MockReservationStore)

	manager := NewManager()
	manager.Put(NewSession("sess-1", pendingReservation()))

	svc := NewService(reservations, new(MockPropertyStore), new(MockVerifier), manager, nil, time.Second)
	in := idScanInput()
	in.Selfie = &ai.MediaPart{MIMEType: "text/plain", Data: []byte("not a face")}
	_, err := svc.SubmitVerification(context.Background(), "sess-1", in)

	assert.ErrorIs(t, err, verification.ErrUnsupportedMedia)
	reservations.AssertNotCalled(t, "MarkVerificationPending", mock.Anything, mock.Anything)
}

func TestContract_RendersForVerifiedGuest(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("GetByReference", mock.Anything, "AIRBNB-11A").Return(pendingReservation(), nil)

	properties := new(MockPropertyStore)
	properties.On("GetByID", mock.Anything, "paradise-villa").Return(villaProperty(), nil)

	manager := NewManager()
	session := NewSession("sess-1", pendingReservation())
	session.ApplyVerification(verification.Result{
		Status:    verification.StatusVerified,
		GuestName: "Ada Lovelace",
	}, false)
	manager.Put(session)

	svc := NewService(reservations, properties, new(MockVerifier), manager, nil, time.Second)
	contract, err := svc.Contract(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "Agreement for Ada Lovelace at Paradise Villa.", contract)
}

func TestSign_GateThroughService(t *testing.T) {
	manager := NewManager()
	session := NewSession("sess-1", pendingReservation())
	session.ApplyVerification(verification.Result{
		Status:    verification.StatusVerified,
		GuestName: "Ada Lovelace",
	}, false)
	manager.Put(session)

	svc := NewService(new(MockReservationStore), new(MockPropertyStore), new(MockVerifier), manager, nil, time.Second)

	_, err := svc.Sign("sess-1", "data:image/png;base64,sig", false)
	assert.ErrorIs(t, err, ErrAgreementRequired)

	got, _ := svc.Get("sess-1")
	assert.Equal(t, StepContract, got.Step)

	signed, err := svc.Sign("sess-1", "data:image/png;base64,sig", true)
	require.NoError(t, err)
	assert.Equal(t, StepInstructions, signed.Step)
}

func TestCheckout_PersistsCheckedOut(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("UpdateStatus", mock.Anything, "AIRBNB-11A", domain.ReservationCheckedOut).Return(nil)

	manager := NewManager()
	res := pendingReservation()
	res.Status = domain.ReservationVerified
	manager.Put(NewSession("sess-1", res))

	svc := NewService(reservations, new(MockPropertyStore), new(MockVerifier), manager, nil, time.Second)
	session, err := svc.Checkout(context.Background(), "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StepCheckout, session.Step)
	reservations.AssertExpectations(t)
}

func TestCheckout_ClosesAssistantChat(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("UpdateStatus", mock.Anything, "AIRBNB-11A", domain.ReservationCheckedOut).Return(nil)

	chat := new(MockChatCloser)
	chat.On("CloseSession", "sess-1").Return()

	manager := NewManager()
	res := pendingReservation()
	res.Status = domain.ReservationVerified
	manager.Put(NewSession("sess-1", res))

	svc := NewService(reservations, new(MockPropertyStore), new(MockVerifier), manager, chat, time.Second)
	_, err := svc.Checkout(context.Background(), "sess-1")

	require.NoError(t, err)
	chat.AssertExpectations(t)
}

func TestCheckout_FailedPersistDoesNotCloseChat(t *testing.T) {
	reservations := new(MockReservationStore)
	reservations.On("UpdateStatus", mock.Anything, "AIRBNB-11A", domain.ReservationCheckedOut).
		Return(assert.AnError)

	chat := new(MockChatCloser)

	manager := NewManager()
	res := pendingReservation()
	res.Status = domain.ReservationVerified
	manager.Put(NewSession("sess-1", res))

	svc := NewService(reservations, new(MockPropertyStore), new(MockVerifier), manager, chat, time.Second)
	_, err := svc.Checkout(context.Background(), "sess-1")

	require.Error(t, err)
	chat.AssertNotCalled(t, "CloseSession", mock.Anything)
}
