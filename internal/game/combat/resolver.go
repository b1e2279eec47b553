package combat

import (
	"math"

	"github.com/cory-johannsen/agentrpg/internal/game/dice"
)

// Damage variance bounds applied to the base damage.
const (
	varianceLow  = 0.8
	varianceHigh = 1.2
)

// AttackPower returns the offensive rating of c: str×2+10 for characters, attack for monsters.
func AttackPower(c Combatant) int {
	switch v := c.(type) {
	case *CharacterCombatant:
		return v.Str*2 + 10
	case *MonsterCombatant:
		return v.Attack
	}
	return 0
}

// Mitigation returns how much of attacker's power defender absorbs. A monster absorbs its
// defense. A character absorbs half the attacker's strength, which is zero for a monster
// attacker since monsters carry no strength.
func Mitigation(attacker, defender Combatant) int {
	switch d := defender.(type) {
	case *MonsterCombatant:
		return d.Defense
	case *CharacterCombatant:
		if a, ok := attacker.(*CharacterCombatant); ok {
			return a.Str / 2
		}
	}
	return 0
}

// BaseDamage returns max(1, power − mitigation), the damage before variance.
func BaseDamage(attacker, defender Combatant) int {
	return max(1, AttackPower(attacker)-Mitigation(attacker, defender))
}

// ResolveDamage computes the damage attacker deals to defender:
// max(1, floor(base × uniform[0.8, 1.2))).
//
// Precondition: attacker, defender and src must be non-nil.
// Postcondition: the result is >= 1.
func ResolveDamage(attacker, defender Combatant, src dice.Source) int {
	base := BaseDamage(attacker, defender)
	return max(1, int(math.Floor(float64(base)*dice.Uniform(src, varianceLow, varianceHigh))))
}
