package verification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"keymaster/internal/pkg/ai"
	"keymaster/internal/pkg/httpmedia"
	"keymaster/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/verification", h.Verify)
}

// Verify accepts a multipart form with an id_scan file and an optional
// selfie file and runs the verification adapter synchronously.
func (h *Handler) Verify(c *gin.Context) {
	idScan, err := httpmedia.ReadImagePart(c, "id_scan")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "An identity document image is required")
		return
	}

	var selfie *ai.MediaPart
	if part, err := httpmedia.ReadImagePart(c, "selfie"); err == nil {
		selfie = &part
	}

	result, err := h.service.Verify(c.Request.Context(), Input{IDScan: idScan, Selfie: selfie})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoDocument), errors.Is(err, ErrUnsupportedMedia):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Verification failed")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
