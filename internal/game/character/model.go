// Package character defines the character domain model and pure creation logic.
package character

import (
	"slices"
	"time"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// StartingZone is the zone every new character begins in.
const StartingZone = "town_plaza"

// Status is the activity state of a character.
type Status string

// Character statuses.
const (
	StatusIdle    Status = "idle"
	StatusCombat  Status = "combat"
	StatusDead    Status = "dead"
	StatusResting Status = "resting"
)

// Stats holds the six primary attributes of a character.
type Stats struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
	Luk int `json:"luk"`
}

// Add returns the component-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Str: s.Str + o.Str,
		Dex: s.Dex + o.Dex,
		Int: s.Int + o.Int,
		Wis: s.Wis + o.Wis,
		Cha: s.Cha + o.Cha,
		Luk: s.Luk + o.Luk,
	}
}

// Character represents a player character's persistent state.
//
// Invariant: 0 <= HP <= MaxHP and 0 <= MP <= MaxMP.
// Invariant: Status is StatusDead whenever HP == 0, until the character is healed.
// Invariant: CombatID names the one active combat session the character belongs to, or is
// empty; it stays set for a participant who dies until that session ends.
type Character struct {
	ID      string `json:"id"`
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	Class   Class  `json:"class"`
	Level   int    `json:"level"`
	Exp     int64  `json:"exp"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	MP    int `json:"mp"`
	MaxMP int `json:"max_mp"`

	Stats  Stats    `json:"stats"`
	Skills []string `json:"skills"`
	Status Status   `json:"status"`
	Zone   string   `json:"zone"`

	CombatID string `json:"combat_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	cp.Skills = slices.Clone(c.Skills)
	return &cp
}

// HasSkill reports whether the character knows skill.
func (c *Character) HasSkill(skill string) bool {
	return slices.Contains(c.Skills, skill)
}

// AddSkills adds every skill the character does not already know.
// Skills have set semantics; order is not significant.
func (c *Character) AddSkills(skills ...string) {
	for _, s := range skills {
		if !c.HasSkill(s) {
			c.Skills = append(c.Skills, s)
		}
	}
}

// IsAlive reports whether the character has hit points remaining.
func (c *Character) IsAlive() bool {
	return c.HP > 0
}

// TakeDamage reduces HP by amount, flooring at zero, and marks the character dead at zero.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) TakeDamage(amount int) {
	c.HP = max(0, c.HP-amount)
	if c.HP == 0 {
		c.Status = StatusDead
	}
}

// Heal restores up to amount HP, capped at MaxHP. A dead character brought above
// zero HP returns to idle.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= HP <= MaxHP.
func (c *Character) Heal(amount int) {
	c.HP = min(c.MaxHP, c.HP+amount)
	if c.Status == StatusDead && c.HP > 0 {
		c.Status = StatusIdle
	}
}

// InCombat reports whether c belongs to an active combat session.
func (c *Character) InCombat() bool {
	return c.CombatID != ""
}

// Rest restores HP and MP to full, reviving a dead character.
//
// Postcondition: Returns a conflict error, leaving c unchanged, when c is bound to an active
// combat; this includes participants who died in a combat that has not ended.
func (c *Character) Rest() error {
	if c.InCombat() || c.Status == StatusCombat {
		return gameerr.Conflictf("character %s is in combat", c.ID)
	}
	c.Heal(c.MaxHP)
	c.MP = c.MaxMP
	if c.Status == StatusResting {
		c.Status = StatusIdle
	}
	return nil
}
