package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"keymaster/internal/domain"
)

// ErrHostEmailTaken reports a unique violation on the host email column.
var ErrHostEmailTaken = errors.New("a host with that email already exists")

type HostUserRepository struct {
	db *gorm.DB
}

func NewHostUserRepository(db *gorm.DB) *HostUserRepository {
	return &HostUserRepository{db: db}
}

type hostUserModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Name         string    `gorm:"column:name"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (hostUserModel) TableName() string { return "host_users" }

func toDomainHostUser(m hostUserModel) *domain.HostUser {
	return &domain.HostUser{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *HostUserRepository) Create(ctx context.Context, u *domain.HostUser) error {
	m := hostUserModel{
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if pgErr, ok := tx.Error.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrHostEmailTaken
		}
		if strings.Contains(tx.Error.Error(), "UNIQUE constraint failed") {
			return ErrHostEmailTaken
		}
		return tx.Error
	}
	*u = *toDomainHostUser(m)
	return nil
}

// GetByEmail returns (nil, nil) when no host with that email exists.
func (r *HostUserRepository) GetByEmail(ctx context.Context, email string) (*domain.HostUser, error) {
	var m hostUserModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainHostUser(m), nil
}
