package checkin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"keymaster/internal/modules/verification"
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
	rg.POST("/checkin/lookup", h.Lookup)
	rg.GET("/checkin/sessions/:id", h.GetSession)
	rg.POST("/checkin/sessions/:id/start", h.Start)
	rg.POST("/checkin/sessions/:id/verification/advance", h.AdvanceVerification)
	rg.POST("/checkin/sessions/:id/verification/submit", h.SubmitVerification)
	rg.GET("/checkin/sessions/:id/contract", h.Contract)
	rg.POST("/checkin/sessions/:id/sign", h.Sign)
	rg.GET("/checkin/sessions/:id/instructions", h.Instructions)
	rg.POST("/checkin/sessions/:id/checkout", h.Checkout)
}

type lookupRequest struct {
	BookingReference string `json:"booking_reference" binding:"required"`
}

func (h *Handler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A booking reference is required")
		return
	}

	result, err := h.service.Lookup(c.Request.Context(), req.BookingReference)
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "No reservation found for that booking reference")
		case errors.Is(err, ErrPropertyNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "The reserved property no longer exists")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up the booking")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":     result.Session,
		"property":    result.Property,
		"reservation": result.Reservation,
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown check-in session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

func (h *Handler) Start(c *gin.Context) {
	session, err := h.service.Start(c.Param("id"))
	if err != nil {
		h.renderTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

type advanceRequest struct {
	To string `json:"to" binding:"required"`
}

func (h *Handler) AdvanceVerification(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A target sub-step is required")
		return
	}

	session, err := h.service.AdvanceVerifySub(c.Param("id"), VerifySubStep(req.To))
	if err != nil {
		h.renderTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

func (h *Handler) SubmitVerification(c *gin.Context) {
	idScan, err := httpmedia.ReadImagePart(c, "id_scan")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "An identity document image is required")
		return
	}

	var selfie *ai.MediaPart
	if part, err := httpmedia.ReadImagePart(c, "selfie"); err == nil {
		selfie = &part
	}

	session, err := h.service.SubmitVerification(c.Request.Context(), c.Param("id"), verification.Input{
		IDScan: idScan,
		Selfie: selfie,
	})
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrNoDocument), errors.Is(err, verification.ErrUnsupportedMedia):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			h.renderTransitionError(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

func (h *Handler) Contract(c *gin.Context) {
	contract, err := h.service.Contract(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

type signRequest struct {
	SignatureData string `json:"signature_data"`
	Agreed        bool   `json:"agreed"`
}

func (h *Handler) Sign(c *gin.Context) {
	var req signRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	session, err := h.service.Sign(c.Param("id"), req.SignatureData, req.Agreed)
	if err != nil {
		switch {
		case errors.Is(err, ErrSignatureRequired), errors.Is(err, ErrAgreementRequired):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			h.renderTransitionError(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

func (h *Handler) Instructions(c *gin.Context) {
	property, err := h.service.Instructions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderTransitionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"instructions":    property.CheckinInstructions,
		"google_maps_url": property.GoogleMapsURL,
		"property_name":   property.Name,
	})
}

func (h *Handler) Checkout(c *gin.Context) {
	session, err := h.service.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderTransitionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

func (h *Handler) renderTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown check-in session")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_STEP", "That action is not available at the current step")
	case errors.Is(err, ErrReservationNotFound), errors.Is(err, ErrPropertyNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "The booking could not be loaded")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
