package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// ExplorationRepository implements exploration.StateRepository in memory.
type ExplorationRepository struct {
	mu    sync.RWMutex
	store map[string]*exploration.State
}

// NewExplorationRepository creates an empty ExplorationRepository.
func NewExplorationRepository() *ExplorationRepository {
	return &ExplorationRepository{store: make(map[string]*exploration.State)}
}

// Get returns a copy of the state of characterID.
func (r *ExplorationRepository) Get(_ context.Context, characterID string) (*exploration.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.store[characterID]
	if !ok {
		return nil, gameerr.NotFoundf("no exploration state for %s", characterID)
	}
	return st.Clone(), nil
}

// Save stores a copy of s, replacing any previous state.
func (r *ExplorationRepository) Save(_ context.Context, s *exploration.State) error {
	if s == nil || s.CharacterID == "" {
		return gameerr.Validationf("character id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[s.CharacterID] = s.Clone()
	return nil
}
