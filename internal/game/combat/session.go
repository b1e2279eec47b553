package combat

import (
	"context"
	"slices"
	"time"

	"github.com/cory-johannsen/agentrpg/internal/game/npc"
)

// SessionType is the kind of combat.
type SessionType string

// TypePvE is combat between characters and monsters.
const TypePvE SessionType = "pve"

// Status is the lifecycle state of a session.
type Status string

// Session statuses. StatusFled is reserved: no operation produces it yet.
const (
	StatusActive  Status = "active"
	StatusVictory Status = "victory"
	StatusDefeat  Status = "defeat"
	StatusFled    Status = "fled"
)

// Terminal reports whether s ends the session.
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Action labels a log entry.
type Action string

// Log actions.
const (
	ActionCombatStart Action = "combat_start"
	ActionAttack      Action = "attack"
	ActionVictory     Action = "victory"
	ActionDefeat      Action = "defeat"
)

// SystemActor is the actor id of entries the engine writes itself.
const SystemActor = "system"

// LogEntry is one line of the combat log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	TargetID  string    `json:"target_id,omitempty"`
	Damage    int       `json:"damage,omitempty"`
	Message   string    `json:"message"`
}

// Session is one combat encounter.
//
// Invariant: TurnOrder is a permutation of ParticipantIDs ∪ EnemyIDs.
// Invariant: once Status is terminal the session never changes; Log only grows.
// Version increases by one on every successful save.
type Session struct {
	ID             string          `json:"id"`
	Type           SessionType     `json:"type"`
	ParticipantIDs []string        `json:"participant_ids"`
	EnemyIDs       []string        `json:"enemy_ids"`
	Monsters       []*npc.Instance `json:"monsters"`
	TurnOrder      []string        `json:"turn_order"`
	CurrentTurn    int             `json:"current_turn"`
	Status         Status          `json:"status"`
	Log            []LogEntry      `json:"log"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int64           `json:"version"`
}

// CurrentActor returns the id whose turn it is.
func (s *Session) CurrentActor() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentTurn%len(s.TurnOrder)]
}

// HasParticipant reports whether id is one of the session's characters.
func (s *Session) HasParticipant(id string) bool {
	return slices.Contains(s.ParticipantIDs, id)
}

// Monster returns the in-session monster with id, or nil.
func (s *Session) Monster(id string) *npc.Instance {
	for _, m := range s.Monsters {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// AllMonstersDown reports whether every monster has hp <= 0.
func (s *Session) AllMonstersDown() bool {
	for _, m := range s.Monsters {
		if m.HP > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	cp := *s
	cp.ParticipantIDs = slices.Clone(s.ParticipantIDs)
	cp.EnemyIDs = slices.Clone(s.EnemyIDs)
	cp.TurnOrder = slices.Clone(s.TurnOrder)
	cp.Log = slices.Clone(s.Log)
	cp.Monsters = make([]*npc.Instance, len(s.Monsters))
	for i, m := range s.Monsters {
		cp.Monsters[i] = m.Clone()
	}
	return &cp
}

// SessionRepository stores combat sessions.
//
// Implementations guarantee read-your-writes per id. Get of an unknown id returns an error
// matching gameerr.ErrNotFound. Save succeeds only when the stored Version equals s.Version,
// then increments both; a stale save returns an error matching gameerr.ErrConflict.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
