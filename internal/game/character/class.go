package character

import (
	"strings"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// Class is a character archetype.
type Class string

// Playable classes.
const (
	Warrior Class = "warrior"
	Mage    Class = "mage"
	Rogue   Class = "rogue"
	Cleric  Class = "cleric"
	Ranger  Class = "ranger"
)

// Classes lists every playable class in display order.
var Classes = []Class{Warrior, Mage, Rogue, Cleric, Ranger}

// ClassDef is the creation profile of a class.
type ClassDef struct {
	BaseStats Stats
	BaseHP    int
	BaseMP    int
	Skills    []string
}

var classDefs = map[Class]ClassDef{
	Warrior: {
		BaseStats: Stats{Str: 14, Dex: 10, Int: 6, Wis: 8, Cha: 8, Luk: 8},
		BaseHP:    120, BaseMP: 30,
		Skills: []string{"slash", "shield_bash"},
	},
	Mage: {
		BaseStats: Stats{Str: 6, Dex: 8, Int: 14, Wis: 12, Cha: 8, Luk: 6},
		BaseHP:    60, BaseMP: 120,
		Skills: []string{"fireball", "ice_shard"},
	},
	Rogue: {
		BaseStats: Stats{Str: 8, Dex: 14, Int: 8, Wis: 6, Cha: 10, Luk: 12},
		BaseHP:    80, BaseMP: 50,
		Skills: []string{"backstab", "poison_blade"},
	},
	Cleric: {
		BaseStats: Stats{Str: 8, Dex: 8, Int: 10, Wis: 14, Cha: 10, Luk: 6},
		BaseHP:    80, BaseMP: 100,
		Skills: []string{"heal", "bless"},
	},
	Ranger: {
		BaseStats: Stats{Str: 10, Dex: 12, Int: 8, Wis: 10, Cha: 8, Luk: 10},
		BaseHP:    90, BaseMP: 60,
		Skills: []string{"arrow_shot", "trap_set"},
	},
}

// Def returns the creation profile of c.
func (c Class) Def() (ClassDef, bool) {
	d, ok := classDefs[c]
	return d, ok
}

// Valid reports whether c is a playable class.
func (c Class) Valid() bool {
	_, ok := classDefs[c]
	return ok
}

// ParseClass converts a case-insensitive class name into a Class.
//
// Postcondition: Returns a valid Class or a non-nil error listing the valid names.
func ParseClass(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		names := make([]string, len(Classes))
		for i, cl := range Classes {
			names[i] = string(cl)
		}
		return "", gameerr.Validationf("invalid class %q, choose from: %s", s, strings.Join(names, ", "))
	}
	return c, nil
}
