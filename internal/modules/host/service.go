package host

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"keymaster/internal/domain"
	jwtsvc "keymaster/internal/pkg/jwt"
)

type Service struct {
	hosts        HostUserStore
	properties   PropertyStore
	reservations ReservationStore
	jwt          *jwtsvc.Service
}

func NewService(
	hosts HostUserStore,
	properties PropertyStore,
	reservations ReservationStore,
	jwt *jwtsvc.Service,
) *Service {
	return &Service{
		hosts:        hosts,
		properties:   properties,
		reservations: reservations,
		jwt:          jwt,
	}
}

type LoginResult struct {
	User  *domain.HostUser
	Token string
}

// Login checks credentials against the store and issues a session token.
// A bad email and a bad password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.hosts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("host lookup: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return s.properties.GetAll(ctx)
}

func (s *Service) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*domain.Property, error) {
	category := domain.PropertyCategory(strings.TrimSpace(req.Category))
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	p := &domain.Property{
		Name:          strings.TrimSpace(req.Name),
		Category:      category,
		Address:       strings.TrimSpace(req.Address),
		ImageURL:      req.ImageURL,
		ImageHint:     "custom property",
		GoogleMapsURL: req.GoogleMapsURL,
		CheckinInstructions: domain.CheckinInstructions{
			WiFiNetwork:  req.WiFiNetwork,
			WiFiPassword: req.WiFiPassword,
			DoorCode:     req.DoorCode,
			Rules:        req.Rules,
		},
		ContractTemplate: req.ContractTemplate,
	}

	if err := s.properties.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return p, nil
}

func (s *Service) ListReservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservations.GetAll(ctx)
}

// ReservationDetail is the dashboard's review view: the reservation with
// its property and the verification reconciliation state spelled out.
type ReservationDetail struct {
	Reservation *domain.Reservation `json:"reservation"`
	Property    *domain.Property    `json:"property,omitempty"`

	// pending | confirmed | failed | none
	VerificationState string `json:"verification_state"`
}

func (s *Service) GetReservation(ctx context.Context, ref string) (*ReservationDetail, error) {
	res, err := s.reservations.GetByReference(ctx, ref)
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

	return &ReservationDetail{
		Reservation:       res,
		Property:          property,
		VerificationState: verificationState(res),
	}, nil
}

// verificationState distills the optimistic-advance trail: pending means a
// guest may be past the verification step on a provisional result the host
// should keep an eye on.
func verificationState(res *domain.Reservation) string {
	switch {
	case res.VerificationPending:
		return "pending"
	case res.Status == domain.ReservationFailed:
		return "failed"
	case res.Status == domain.ReservationVerified,
		res.Status == domain.ReservationCheckedIn,
		res.Status == domain.ReservationCheckedOut:
		return "confirmed"
	default:
		return "none"
	}
}
