package assistant

import "errors"

var (
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrEmptyText     = errors.New("text cannot be empty")
	ErrNoAudio       = errors.New("speech model returned no audio")
	ErrUnavailable   = errors.New("assistant is temporarily unavailable")
)
