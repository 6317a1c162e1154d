// Package session manages playground session lifecycle.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ratanachh/eql/internal/dialect"
)

// Session holds per-connection playground state: the preferred target
// dialect and the query history.
type Session struct {
	ID           string    `json:"id"`
	Dialect      string    `json:"dialect"`
	History      []string  `json:"history"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	mu sync.Mutex
}

// NewSession creates a session targeting the given default dialect.
func NewSession(d dialect.Dialect) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		Dialect:      d.Name,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActiveAt = time.Now()
	s.mu.Unlock()
}

// AddHistory appends a query to the session history.
func (s *Session) AddHistory(query string) {
	s.mu.Lock()
	s.History = append(s.History, query)
	s.LastActiveAt = time.Now()
	s.mu.Unlock()
}

// SetDialect switches the session's target dialect.
func (s *Session) SetDialect(name string) {
	s.mu.Lock()
	s.Dialect = name
	s.LastActiveAt = time.Now()
	s.mu.Unlock()
}

// IsExpired reports whether the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle reports whether the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActiveAt) > timeout
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	defaultD    dialect.Dialect
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts.
func NewManager(d dialect.Dialect, maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		defaultD:    d,
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create creates a new session and returns it.
func (m *Manager) Create() *Session {
	s := NewSession(m.defaultD)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
		m.Remove(id)
		return nil
	}
	return s
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup removes all expired and idle sessions. Called periodically.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout) {
			delete(m.sessions, id)
		}
	}
}
