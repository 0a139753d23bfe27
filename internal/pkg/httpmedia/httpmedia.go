// Package httpmedia reads uploaded image parts into inline media for the
// model provider.
package httpmedia

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"keymaster/internal/pkg/ai"
)

// MaxImageBytes bounds a single uploaded image. Larger uploads are rejected
// before touching the model.
const MaxImageBytes = 8 << 20

var ErrTooLarge = errors.New("uploaded file too large")

// ReadImagePart reads the named multipart file field into a MediaPart,
// sniffing the content type when the client did not declare one.
func ReadImagePart(c *gin.Context, field string) (ai.MediaPart, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return ai.MediaPart{}, err
	}
	if fh.Size > MaxImageBytes {
		return ai.MediaPart{}, ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return ai.MediaPart{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return ai.MediaPart{}, err
	}
	if len(data) > MaxImageBytes {
		return ai.MediaPart{}, ErrTooLarge
	}

	mime := fh.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	return ai.MediaPart{MIMEType: mime, Data: data}, nil
}
