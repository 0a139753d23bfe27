package domain

import "time"

// HostUser is a dashboard account. Guests never have accounts; they are
// identified by booking reference alone.
type HostUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
