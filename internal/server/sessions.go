// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/workflow-mapper/internal/intake"
)

// Session is one browser page's working set and its latest mapping.
type Session struct {
	ID string

	mu           sync.Mutex
	ws           *intake.WorkingSet
	busy         bool
	output       string
	hasOutput    bool
	lastAccessed time.Time
}

// SessionManager owns the live page sessions.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxFileSize int64
	now         func() time.Time
}

// NewSessionManager returns an empty manager whose sessions accept files up
// to maxFileSize bytes.
func NewSessionManager(maxFileSize int64) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// Create starts a session with an empty working set.
func (m *SessionManager) Create() *Session {
	s := &Session{
		ID:           uuid.New().String(),
		ws:           intake.NewWorkingSet(m.maxFileSize),
		lastAccessed: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session and marks it as used.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastAccessed = m.now()
	s.mu.Unlock()
	return s, true
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdle drops sessions unused for longer than maxAge. Sessions with a
// request in flight are kept. It returns the number removed.
func (m *SessionManager) CleanupIdle(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := !s.busy && s.lastAccessed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// begin marks the session busy and returns a snapshot of its working set.
// ok is false when a run is already in flight.
func (s *Session) begin() (*intake.WorkingSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, false
	}
	s.busy = true
	snap := intake.NewWorkingSet(s.ws.MaxSize())
	snap.Select(s.ws.Files())
	return snap, true
}

// finish clears the busy flag and keeps output when the run succeeded.
func (s *Session) finish(output string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if ok {
		s.output = output
		s.hasOutput = true
	}
}
