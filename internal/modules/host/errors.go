package host

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidCategory     = errors.New("unknown property category")
	ErrReservationNotFound = errors.New("reservation not found")
)
