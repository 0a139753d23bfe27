package checkin

import "errors"

var (
	ErrReservationNotFound = errors.New("no reservation for that booking reference")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrSessionNotFound     = errors.New("check-in session not found")
	ErrInvalidTransition   = errors.New("action not allowed in the current step")
	ErrSignatureRequired   = errors.New("a signature is required")
	ErrAgreementRequired   = errors.New("you must agree to the terms")
)
