package checkin

import (
	"sync"

	"keymaster/internal/domain"
)

// Manager holds live wizard sessions in memory. A session exists from the
// booking-reference lookup until the process exits; nothing in it is
// persisted. All mutation goes through Update so concurrent HTTP and
// websocket traffic on the same session stays consistent.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Put(s *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[s.ID] = s
}

// Get returns a snapshot copy; mutating it does not affect the live session.
func (m *Manager) Get(id string) (Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, false
	}
	return snapshot(s), true
}

// Update applies fn to the live session under the lock and returns the
// resulting snapshot. fn returning an error leaves any changes it already
// made in place; transition methods fail before mutating.
func (m *Manager) Update(id string, fn func(*Session) error) (Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		return snapshot(s), err
	}
	return snapshot(s), nil
}

// ChatContext exposes the session's booking context to the assistant chat.
func (m *Manager) ChatContext(id string) (propertyID, checkInDate, checkOutDate string, ok bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	s, found := m.sessions[id]
	if !found {
		return "", "", "", false
	}
	return s.PropertyID, s.CheckInDate, s.CheckOutDate, true
}

// AppendChatMessage adds to the session's transient transcript.
func (m *Manager) AppendChatMessage(id string, msg domain.ChatMessage) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.Messages = append(s.Messages, msg)
	s.touch()
	return true
}

func snapshot(s *Session) Session {
	copied := *s
	copied.Messages = append([]domain.ChatMessage(nil), s.Messages...)
	return copied
}
