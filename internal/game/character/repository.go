package character

import "context"

// DamageResult is the outcome of applying damage to a stored character.
type DamageResult struct {
	HP     int
	IsDead bool
}

// Repository stores characters.
//
// Implementations serialize mutations per character id and guarantee
// read-your-writes for a given id. Lookups of an unknown id return an error
// matching gameerr.ErrNotFound.
type Repository interface {
	// Create persists a new character.
	Create(ctx context.Context, c *Character) error
	// Get returns a copy of the character with id.
	Get(ctx context.Context, id string) (*Character, error)
	// GetByAgent returns the first character owned by agentID.
	GetByAgent(ctx context.Context, agentID string) (*Character, error)
	// List returns every character.
	List(ctx context.Context) ([]*Character, error)
	// Update applies mutate to the stored character atomically and returns the result.
	// An error returned by mutate aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*Character) error) (*Character, error)
	// ApplyDamage reduces HP by amount, flooring at zero and marking the character dead at zero.
	ApplyDamage(ctx context.Context, id string, amount int) (DamageResult, error)
	// SetStatus sets the character's status.
	SetStatus(ctx context.Context, id string, status Status) error
	// Heal restores HP up to the maximum, reviving a dead character to idle.
	Heal(ctx context.Context, id string, amount int) (*Character, error)
}
