package assistant

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"keymaster/internal/domain"
	"keymaster/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the web client's deploy origin is fixed.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service  *Service
	hub      *Hub
	sessions ChatSessionStore
}

func NewHandler(service *Service, hub *Hub, sessions ChatSessionStore) *Handler {
	return &Handler{
		service:  service,
		hub:      hub,
		sessions: sessions,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assistant/ask", h.Ask)
	rg.POST("/assistant/speech", h.Speech)
	rg.GET("/assistant/chat/:sessionID", h.Chat)
}

func (h *Handler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	answer, err := h.service.AskQuestion(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrUnavailable):
			response.Error(c, http.StatusBadGateway, "ASSISTANT_UNAVAILABLE", "The assistant could not answer right now")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to answer the question")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// Speech streams a WAV clip for the given text. The clip is regenerated on
// every call.
func (h *Handler) Speech(c *gin.Context) {
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	wav, err := h.service.Speak(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyText):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNoAudio):
			response.Error(c, http.StatusBadGateway, "NO_AUDIO", "The speech model returned no audio")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate speech")
		}
		return
	}

	c.Data(http.StatusOK, "audio/wav", wav)
}

type wsClientMessage struct {
	Text string `json:"text"`
}

type wsServerMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

// Chat upgrades to a websocket and relays guest questions to the FAQ
// adapter for the lifetime of a check-in session. The transcript is
// appended to the session and dies with it.
func (h *Handler) Chat(c *gin.Context) {
	sessionID := c.Param("sessionID")
	propertyID, checkIn, checkOut, ok := h.sessions.ChatContext(sessionID)
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown check-in session")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.hub.Register(sessionID, conn)
	defer h.hub.Unregister(sessionID)

	for {
		var msg wsClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Text == "" {
			continue
		}

		h.sessions.AppendChatMessage(sessionID, domain.ChatMessage{
			Sender: domain.SenderGuest,
			Text:   msg.Text,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		answer, err := h.service.AskQuestion(ctx, AskRequest{
			PropertyID:   propertyID,
			Question:     msg.Text,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
		})
		cancel()

		if err != nil {
			h.hub.Send(sessionID, wsServerMessage{
				Sender: string(domain.SenderAssistant),
				Error:  "The assistant could not answer right now. Please try again.",
			})
			continue
		}

		h.sessions.AppendChatMessage(sessionID, domain.ChatMessage{
			Sender: domain.SenderAssistant,
			Text:   answer,
		})
		h.hub.Send(sessionID, wsServerMessage{
			Sender: string(domain.SenderAssistant),
			Text:   answer,
		})
	}
}
