package verification

import "errors"

var (
	ErrNoDocument       = errors.New("identity document image is required")
	ErrUnsupportedMedia = errors.New("identity document must be image data with a declared media type")
)
