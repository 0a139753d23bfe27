package host

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"keymaster/internal/middleware"
	"keymaster/internal/pkg/response"
)

type Handler struct {
	service      *Service
	cookieSecure bool
	sessionTTL   time.Duration
}

func NewHandler(service *Service, cookieSecure bool, sessionTTL time.Duration) *Handler {
	return &Handler{
		service:      service,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// RegisterPublicRoutes mounts login; everything else lives behind the
// session gate.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/host/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/host/logout", h.Logout)
	rg.GET("/host/me", h.Me)
	rg.GET("/host/properties", h.ListProperties)
	rg.POST("/host/properties", h.CreateProperty)
	rg.GET("/host/reservations", h.ListReservations)
	rg.GET("/host/reservations/:ref", h.GetReservation)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookieName,
		result.Token,
		int(h.sessionTTL.Seconds()),
		"/",
		"",
		h.cookieSecure,
		true,
	)

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"email": result.User.Email,
			"name":  result.User.Name,
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *Handler) Me(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "No active session")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email": session.Email,
		"name":  session.Name,
	})
}

func (h *Handler) ListProperties(c *gin.Context) {
	properties, err := h.service.ListProperties(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list properties")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"properties": properties})
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid property payload")
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Category must be Apartment, Riad, Villa or Cottage")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create property")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"property": property})
}

func (h *Handler) ListReservations(c *gin.Context) {
	reservations, err := h.service.ListReservations(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reservations")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": reservations})
}

func (h *Handler) GetReservation(c *gin.Context) {
	detail, err := h.service.GetReservation(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load reservation")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"detail": detail})
}
