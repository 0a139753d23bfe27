package assistant

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub tracks one websocket connection per check-in session. A reconnect
// replaces the previous connection.
type Hub struct {
	connections map[string]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[sessionID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[sessionID] = conn
}

func (h *Hub) Unregister(sessionID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[sessionID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, sessionID)
	}
}

// CloseSession ends the session's chat with a normal closure frame. The
// check-in wizard calls this when the guest reaches checkout, so a chat
// does not outlive the stay it belongs to.
func (h *Hub) CloseSession(sessionID string) {
	h.mutex.Lock()
	conn, exists := h.connections[sessionID]
	if exists {
		delete(h.connections, sessionID)
	}
	h.mutex.Unlock()

	if !exists || conn == nil {
		return
	}

	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "checked out"),
		deadline,
	)
	_ = conn.Close()
}

func (h *Hub) Send(sessionID string, message interface{}) bool {
	h.mutex.RLock()
	conn, exists := h.connections[sessionID]
	h.mutex.RUnlock()

	if !exists || conn == nil {
		return false
	}

	if err := conn.WriteJSON(message); err != nil {
		h.Unregister(sessionID)
		return false
	}

	return true
}
