package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

const characterColumns = `id, agent_id, name, class, level, exp, hp, max_hp, mp, max_mp,
	stats, skills, status, zone, combat_id, created_at, updated_at`

// CharacterRepository implements character.Repository on PostgreSQL.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts c and fills in the stored timestamps.
//
// Precondition: c.ID must be non-empty.
// Postcondition: Returns a conflict error when the id already exists.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) error {
	if c == nil || c.ID == "" {
		return gameerr.Validationf("character id is required")
	}
	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO characters
			(id, agent_id, name, class, level, exp, hp, max_hp, mp, max_mp,
			 stats, skills, status, zone, combat_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16)
		RETURNING created_at, updated_at`,
		c.ID, c.AgentID, c.Name, string(c.Class), c.Level, c.Exp, c.HP, c.MaxHP, c.MP, c.MaxMP,
		stats, skillsOrEmpty(c.Skills), string(c.Status), c.Zone, c.CombatID, c.CreatedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return gameerr.Conflictf("character %s already exists", c.ID)
		}
		return fmt.Errorf("inserting character: %w", err)
	}
	return nil
}

// Get returns the character with id.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gameerr.NotFoundf("character %s not found", id)
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// GetByAgent returns the oldest character owned by agentID.
func (r *CharacterRepository) GetByAgent(ctx context.Context, agentID string) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, `
		SELECT `+characterColumns+` FROM characters
		WHERE agent_id = $1 ORDER BY created_at ASC, id ASC LIMIT 1`, agentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gameerr.NotFoundf("no character for agent %s", agentID)
		}
		return nil, fmt.Errorf("querying character by agent: %w", err)
	}
	return c, nil
}

// List returns every character ordered by creation time.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// Update locks the row, applies mutate and writes the result in one transaction.
func (r *CharacterRepository) Update(ctx context.Context, id string, mutate func(*character.Character) error) (*character.Character, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c, err := scanCharacter(tx.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gameerr.NotFoundf("character %s not found", id)
		}
		return nil, fmt.Errorf("locking character: %w", err)
	}
	if err := mutate(c); err != nil {
		return nil, err
	}
	c.ID = id

	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}
	err = tx.QueryRow(ctx, `
		UPDATE characters SET
			name = $2, class = $3, level = $4, exp = $5, hp = $6, max_hp = $7, mp = $8, max_mp = $9,
			stats = $10, skills = $11, status = $12, zone = $13, combat_id = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		id, c.Name, string(c.Class), c.Level, c.Exp, c.HP, c.MaxHP, c.MP, c.MaxMP,
		stats, skillsOrEmpty(c.Skills), string(c.Status), c.Zone, c.CombatID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating character: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing character update: %w", err)
	}
	return c, nil
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
	tag, err := r.db.Exec(ctx, `UPDATE characters SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("setting character status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gameerr.NotFoundf("character %s not found", id)
	}
	return nil
}

// Heal restores up to amount HP.
func (r *CharacterRepository) Heal(ctx context.Context, id string, amount int) (*character.Character, error) {
	return r.Update(ctx, id, func(c *character.Character) error {
		c.Heal(amount)
		return nil
	})
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var (
		c      character.Character
		class  string
		status string
		stats  []byte
	)
	if err := row.Scan(
		&c.ID, &c.AgentID, &c.Name, &class, &c.Level, &c.Exp, &c.HP, &c.MaxHP, &c.MP, &c.MaxMP,
		&stats, &c.Skills, &status, &c.Zone, &c.CombatID, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stats, &c.Stats); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}
	c.Class = character.Class(class)
	c.Status = character.Status(status)
	return &c, nil
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
