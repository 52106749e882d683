package session

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *Memory) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return Session{}, nil
	}
	now := m.now()
	if !m.expired(s, now) {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A Set may have landed since the read lock was dropped.
	cur, ok := m.sessions[userID]
	if !ok || m.expired(cur, now) {
		delete(m.sessions, userID)
		return Session{}, nil
	}
	return cur, nil
}

func (m *Memory) expired(s Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}

func (m *Memory) Set(_ context.Context, userID int64, s Session) error {
	s.UpdatedAt = m.now()
	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}
