package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// SessionRepository implements combat.SessionRepository on PostgreSQL. The session document
// is stored as JSONB next to a version column used for optimistic concurrency.
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a SessionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores s at version 1.
//
// Postcondition: s.Version is 1 on success.
func (r *SessionRepository) Create(ctx context.Context, s *combat.Session) error {
	if s == nil || s.ID == "" {
		return gameerr.Validationf("session id is required")
	}
	prev := s.Version
	s.Version = 1
	data, err := json.Marshal(s)
	if err != nil {
		s.Version = prev
		return fmt.Errorf("encoding combat session: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO combat_sessions (id, status, version, data, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $4, $5)`,
		s.ID, string(s.Status), data, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		s.Version = prev
		if isDuplicateKeyError(err) {
			return gameerr.Conflictf("combat session %s already exists", s.ID)
		}
		return fmt.Errorf("inserting combat session: %w", err)
	}
	return nil
}

// Get returns the session with id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*combat.Session, error) {
	var (
		data    []byte
		version int64
	)
	err := r.db.QueryRow(ctx, `SELECT data, version FROM combat_sessions WHERE id = $1`, id).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gameerr.NotFoundf("combat session %s not found", id)
		}
		return nil, fmt.Errorf("querying combat session: %w", err)
	}
	var s combat.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding combat session: %w", err)
	}
	s.Version = version
	return &s, nil
}

// Save replaces the stored session when versions match.
//
// Postcondition: on success s.Version is incremented; a stale version yields a conflict.
func (r *SessionRepository) Save(ctx context.Context, s *combat.Session) error {
	expected := s.Version
	next := *s
	next.Version = expected + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encoding combat session: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE combat_sessions SET status = $2, data = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $5`,
		s.ID, string(s.Status), data, s.UpdatedAt, expected,
	)
	if err != nil {
		return fmt.Errorf("saving combat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM combat_sessions WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return fmt.Errorf("checking combat session: %w", err)
		}
		if !exists {
			return gameerr.NotFoundf("combat session %s not found", s.ID)
		}
		return gameerr.Conflictf("combat session %s was modified concurrently", s.ID)
	}
	s.Version = next.Version
	return nil
}
