package npc

import (
	"math"
	"slices"
)

// Instance is a live monster inside one combat session.
//
// Invariant: 0 <= HP <= MaxHP once damage has been applied through TakeDamage.
type Instance struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	Name       string     `json:"name"`
	Level      int        `json:"level"`
	HP         int        `json:"hp"`
	MaxHP      int        `json:"max_hp"`
	Attack     int        `json:"attack"`
	Defense    int        `json:"defense"`
	ExpReward  int        `json:"exp_reward"`
	Drops      []ItemDrop `json:"drops,omitempty"`
}

// NewInstance creates a monster at the template's own level.
//
// Precondition: id must be non-empty; tmpl must be non-nil.
// Postcondition: HP equals tmpl.MaxHP.
func NewInstance(id string, tmpl *Template) *Instance {
	return &Instance{
		ID:         id,
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		Level:      tmpl.Level,
		HP:         tmpl.MaxHP,
		MaxHP:      tmpl.MaxHP,
		Attack:     tmpl.Attack,
		Defense:    tmpl.Defense,
		ExpReward:  tmpl.ExpReward,
		Drops:      slices.Clone(tmpl.Drops),
	}
}

// NewScaledInstance creates a monster at level, scaling the template's base hp, attack,
// defense and experience by 1 + (level−1)×0.1, each floored.
//
// Precondition: id must be non-empty; tmpl must be non-nil; level >= 1.
// Postcondition: HP equals MaxHP.
func NewScaledInstance(id string, tmpl *Template, level int) *Instance {
	level = max(1, level)
	scaling := 1 + float64(level-1)*0.1
	scale := func(base int) int { return int(math.Floor(float64(base) * scaling)) }

	inst := NewInstance(id, tmpl)
	inst.Level = level
	inst.MaxHP = scale(tmpl.MaxHP)
	inst.HP = inst.MaxHP
	inst.Attack = scale(tmpl.Attack)
	inst.Defense = scale(tmpl.Defense)
	inst.ExpReward = scale(tmpl.ExpReward)
	return inst
}

// IsAlive reports whether the monster has hit points remaining.
func (i *Instance) IsAlive() bool {
	return i.HP > 0
}

// TakeDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount >= 0.
func (i *Instance) TakeDamage(amount int) {
	i.HP = max(0, i.HP-amount)
}

// Clone returns a deep copy of i.
func (i *Instance) Clone() *Instance {
	cp := *i
	cp.Drops = slices.Clone(i.Drops)
	return &cp
}
