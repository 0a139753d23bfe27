package host

import (
	"context"

	"keymaster/internal/domain"
)

type HostUserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.HostUser, error)
}

type PropertyStore interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	GetAll(ctx context.Context) ([]domain.Property, error)
}

type ReservationStore interface {
	GetByReference(ctx context.Context, ref string) (*domain.Reservation, error)
	GetAll(ctx context.Context) ([]domain.Reservation, error)
}
