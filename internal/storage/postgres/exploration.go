package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// ExplorationRepository implements exploration.StateRepository on PostgreSQL.
type ExplorationRepository struct {
	db *pgxpool.Pool
}

// NewExplorationRepository creates an ExplorationRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewExplorationRepository(db *pgxpool.Pool) *ExplorationRepository {
	return &ExplorationRepository{db: db}
}

// Get returns the state of characterID.
func (r *ExplorationRepository) Get(ctx context.Context, characterID string) (*exploration.State, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM exploration_states WHERE character_id = $1`, characterID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gameerr.NotFoundf("no exploration state for %s", characterID)
		}
		return nil, fmt.Errorf("querying exploration state: %w", err)
	}
	var st exploration.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding exploration state: %w", err)
	}
	return &st, nil
}

// Save upserts s.
//
// Precondition: s.CharacterID must reference a stored character.
func (r *ExplorationRepository) Save(ctx context.Context, s *exploration.State) error {
	if s == nil || s.CharacterID == "" {
		return gameerr.Validationf("character id is required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding exploration state: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO exploration_states (character_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (character_id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		s.CharacterID, data,
	)
	if err != nil {
		return fmt.Errorf("saving exploration state: %w", err)
	}
	return nil
}
