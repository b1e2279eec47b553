// Package encounter rolls what a character meets when exploring a zone.
package encounter

import (
	"time"

	"github.com/cory-johannsen/agentrpg/internal/game/npc"
)

// Kind classifies an encounter.
type Kind string

// Encounter kinds.
const (
	KindMonster  Kind = "monster"
	KindTreasure Kind = "treasure"
	KindEvent    Kind = "event"
	KindNothing  Kind = "nothing"
)

// Placeholder ids carried by treasure and event encounters.
const (
	RandomTreasureID = "random_treasure"
	RandomEventID    = "random_event"
)

// Encounter is the result of one exploration roll.
//
// Invariant: Monsters is non-empty iff Kind == KindMonster.
type Encounter struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"type"`
	Message    string          `json:"message"`
	Monsters   []*npc.Instance `json:"monsters,omitempty"`
	TreasureID string          `json:"treasure_id,omitempty"`
	EventID    string          `json:"event_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Summary is the caller-facing view of an encounter. Monster identities stay hidden
// until combat reveals them.
type Summary struct {
	ID           string `json:"id"`
	Kind         Kind   `json:"type"`
	Message      string `json:"message"`
	MonsterCount int    `json:"monster_count"`
}

// Summary returns the information-hiding view of e.
func (e *Encounter) Summary() Summary {
	return Summary{ID: e.ID, Kind: e.Kind, Message: e.Message, MonsterCount: len(e.Monsters)}
}

// Clone returns a deep copy of e.
func (e *Encounter) Clone() *Encounter {
	cp := *e
	cp.Monsters = make([]*npc.Instance, len(e.Monsters))
	for i, m := range e.Monsters {
		cp.Monsters[i] = m.Clone()
	}
	if e.Monsters == nil {
		cp.Monsters = nil
	}
	return &cp
}
