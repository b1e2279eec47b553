// Package memory provides in-process repository implementations.
//
// Every repository stores deep copies and serializes mutations under its own lock, so reads
// always observe the latest completed write for an id.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// CharacterRepository implements character.Repository in memory.
type CharacterRepository struct {
	mu    sync.RWMutex
	store map[string]*character.Character
	now   func() time.Time
}

// NewCharacterRepository creates an empty CharacterRepository.
func NewCharacterRepository() *CharacterRepository {
	return &CharacterRepository{
		store: make(map[string]*character.Character),
		now:   time.Now,
	}
}

// Create stores c.
//
// Precondition: c must be non-nil with a non-empty ID.
// Postcondition: Returns a conflict error if the id already exists.
func (r *CharacterRepository) Create(_ context.Context, c *character.Character) error {
	if c == nil || c.ID == "" {
		return gameerr.Validationf("character id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.store[c.ID]; exists {
		return gameerr.Conflictf("character %s already exists", c.ID)
	}
	r.store[c.ID] = c.Clone()
	return nil
}

// Get returns a copy of the character with id.
func (r *CharacterRepository) Get(_ context.Context, id string) (*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.store[id]
	if !ok {
		return nil, gameerr.NotFoundf("character %s not found", id)
	}
	return c.Clone(), nil
}

// GetByAgent returns the oldest character owned by agentID.
func (r *CharacterRepository) GetByAgent(_ context.Context, agentID string) (*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *character.Character
	for _, c := range r.store {
		if c.AgentID != agentID {
			continue
		}
		if found == nil || c.CreatedAt.Before(found.CreatedAt) ||
			(c.CreatedAt.Equal(found.CreatedAt) && c.ID < found.ID) {
			found = c
		}
	}
	if found == nil {
		return nil, gameerr.NotFoundf("no character for agent %s", agentID)
	}
	return found.Clone(), nil
}

// List returns copies of every character ordered by creation time.
func (r *CharacterRepository) List(_ context.Context) ([]*character.Character, error) {
	r.mu.RLock()
	out := make([]*character.Character, 0, len(r.store))
	for _, c := range r.store {
		out = append(out, c.Clone())
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *character.Character) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

// Update applies mutate to a copy of the stored character and stores the copy when mutate
// succeeds.
func (r *CharacterRepository) Update(_ context.Context, id string, mutate func(*character.Character) error) (*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return nil, gameerr.NotFoundf("character %s not found", id)
	}
	next := c.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = c.ID
	next.UpdatedAt = r.now()
	r.store[id] = next
	return next.Clone(), nil
}

// ApplyDamage reduces HP by amount, flooring at zero.
func (r *CharacterRepository) ApplyDamage(ctx context.Context, id string, amount int) (character.DamageResult, error) {
	c, err := r.Update(ctx, id, func(c *character.Character) error {
		c.TakeDamage(amount)
		return nil
	})
	if err != nil {
		return character.DamageResult{}, err
	}
	return character.DamageResult{HP: c.HP, IsDead: c.HP <= 0}, nil
}

// SetStatus sets the character's status.
func (r *CharacterRepository) SetStatus(ctx context.Context, id string, status character.Status) error {
	_, err := r.Update(ctx, id, func(c *character.Character) error {
		c.Status = status
		return nil
	})
	return err
}

// Heal restores up to amount HP.
func (r *CharacterRepository) Heal(ctx context.Context, id string, amount int) (*character.Character, error) {
	return r.Update(ctx, id, func(c *character.Character) error {
		c.Heal(amount)
		return nil
	})
}
