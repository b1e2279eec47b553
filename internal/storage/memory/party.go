package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/cory-johannsen/agentrpg/internal/game/party"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// PartyRepository implements party.Repository in memory.
type PartyRepository struct {
	mu    sync.RWMutex
	store map[string]*party.Party
}

// NewPartyRepository creates an empty PartyRepository.
func NewPartyRepository() *PartyRepository {
	return &PartyRepository{store: make(map[string]*party.Party)}
}

// Save stores a copy of p, replacing any previous version.
func (r *PartyRepository) Save(_ context.Context, p *party.Party) error {
	if p == nil || p.ID == "" {
		return gameerr.Validationf("party id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[p.ID] = p.Clone()
	return nil
}

// Get returns a copy of the party with id.
func (r *PartyRepository) Get(_ context.Context, id string) (*party.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.store[id]
	if !ok {
		return nil, gameerr.NotFoundf("party %s not found", id)
	}
	return p.Clone(), nil
}

// Delete removes the party with id.
func (r *PartyRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return gameerr.NotFoundf("party %s not found", id)
	}
	delete(r.store, id)
	return nil
}

// List returns copies of every party ordered by creation time.
func (r *PartyRepository) List(_ context.Context) ([]*party.Party, error) {
	r.mu.RLock()
	out := make([]*party.Party, 0, len(r.store))
	for _, p := range r.store {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *party.Party) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

// FindByMember returns the party containing characterID, or (nil, nil).
func (r *PartyRepository) FindByMember(_ context.Context, characterID string) (*party.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.store {
		if p.HasMember(characterID) {
			return p.Clone(), nil
		}
	}
	return nil, nil
}
