package combat

import (
	"math"
	"sort"

	"github.com/cory-johannsen/agentrpg/internal/game/dice"
)

// initiativeJitter is the width of the random bonus added to every initiative key.
const initiativeJitter = 3.0

// Order computes the turn order of combatants, highest initiative first.
// A character's key is dex + uniform[0,3); a monster's is floor(attack/2) + uniform[0,3).
// Equal keys keep their input order; the jitter is the only tie-break.
//
// Precondition: src must be non-nil.
// Postcondition: the result is a permutation of the combatant ids.
func Order(combatants []Combatant, src dice.Source) []string {
	type keyed struct {
		id  string
		key float64
	}
	ks := make([]keyed, len(combatants))
	for i, c := range combatants {
		var base float64
		switch v := c.(type) {
		case *CharacterCombatant:
			base = float64(v.Dex)
		case *MonsterCombatant:
			base = math.Floor(float64(v.Attack) / 2)
		}
		ks[i] = keyed{id: c.CombatantID(), key: base + dice.Uniform(src, 0, initiativeJitter)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key > ks[j].key })

	order := make([]string, len(ks))
	for i, k := range ks {
		order[i] = k.id
	}
	return order
}
