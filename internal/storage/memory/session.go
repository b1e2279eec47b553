package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// SessionRepository implements combat.SessionRepository in memory.
type SessionRepository struct {
	mu    sync.RWMutex
	store map[string]*combat.Session
}

// NewSessionRepository creates an empty SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{store: make(map[string]*combat.Session)}
}

// Create stores s at version 1.
//
// Postcondition: s.Version is 1 on success.
func (r *SessionRepository) Create(_ context.Context, s *combat.Session) error {
	if s == nil || s.ID == "" {
		return gameerr.Validationf("session id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.store[s.ID]; exists {
		return gameerr.Conflictf("combat session %s already exists", s.ID)
	}
	s.Version = 1
	r.store[s.ID] = s.Clone()
	return nil
}

// Get returns a copy of the session with id.
func (r *SessionRepository) Get(_ context.Context, id string) (*combat.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.store[id]
	if !ok {
		return nil, gameerr.NotFoundf("combat session %s not found", id)
	}
	return s.Clone(), nil
}

// Save replaces the stored session when versions match.
//
// Postcondition: on success s.Version is incremented; a stale version yields a conflict.
func (r *SessionRepository) Save(_ context.Context, s *combat.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.store[s.ID]
	if !ok {
		return gameerr.NotFoundf("combat session %s not found", s.ID)
	}
	if cur.Version != s.Version {
		return gameerr.Conflictf("combat session %s was modified concurrently", s.ID)
	}
	s.Version++
	r.store[s.ID] = s.Clone()
	return nil
}
