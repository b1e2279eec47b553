// Package combat implements turn-based combat: turn order, damage resolution and the
// session state machine.
package combat

import (
	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
)

// Combatant is either a *CharacterCombatant or a *MonsterCombatant.
// The set is closed; dispatch with a type switch.
type Combatant interface {
	CombatantID() string
	DisplayName() string
	combatant()
}

// CharacterCombatant is the combat view of a player character.
type CharacterCombatant struct {
	ID   string
	Name string
	Str  int
	Dex  int
	HP   int
}

// MonsterCombatant is the combat view of a monster instance.
type MonsterCombatant struct {
	ID      string
	Name    string
	Attack  int
	Defense int
	HP      int
}

// CombatantID returns the character id.
func (c *CharacterCombatant) CombatantID() string { return c.ID }

// DisplayName returns the character name.
func (c *CharacterCombatant) DisplayName() string { return c.Name }

func (c *CharacterCombatant) combatant() {}

// CombatantID returns the monster instance id.
func (m *MonsterCombatant) CombatantID() string { return m.ID }

// DisplayName returns the monster name.
func (m *MonsterCombatant) DisplayName() string { return m.Name }

func (m *MonsterCombatant) combatant() {}

// FromCharacter builds the combat view of c.
//
// Precondition: c must be non-nil.
func FromCharacter(c *character.Character) *CharacterCombatant {
	return &CharacterCombatant{ID: c.ID, Name: c.Name, Str: c.Stats.Str, Dex: c.Stats.Dex, HP: c.HP}
}

// FromMonster builds the combat view of m.
//
// Precondition: m must be non-nil.
func FromMonster(m *npc.Instance) *MonsterCombatant {
	return &MonsterCombatant{ID: m.ID, Name: m.Name, Attack: m.Attack, Defense: m.Defense, HP: m.HP}
}
