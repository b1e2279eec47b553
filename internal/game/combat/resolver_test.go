package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/dice"
)

// fixedSrc returns f from Float64 and 0 from Intn.
type fixedSrc struct{ f float64 }

func (s fixedSrc) Intn(int) int     { return 0 }
func (s fixedSrc) Float64() float64 { return s.f }

// TestResolveDamage_StrengthAgainstDefense verifies str 14 against defense 2 has base 36
// and lands within [28, 43].
func TestResolveDamage_StrengthAgainstDefense(t *testing.T) {
	hero := &combat.CharacterCombatant{ID: "c1", Name: "Hero", Str: 14, Dex: 10, HP: 100}
	gob := &combat.MonsterCombatant{ID: "m1", Name: "Goblin", Attack: 8, Defense: 2, HP: 30}

	assert.Equal(t, 36, combat.BaseDamage(hero, gob))
	assert.Equal(t, 28, combat.ResolveDamage(hero, gob, fixedSrc{0}))
	assert.Equal(t, 43, combat.ResolveDamage(hero, gob, fixedSrc{0.9999999}))
}

func TestResolveDamage_MonsterIgnoresCharacterMitigation(t *testing.T) {
	hero := &combat.CharacterCombatant{ID: "c1", Name: "Hero", Str: 14}
	orc := &combat.MonsterCombatant{ID: "m1", Name: "Orc", Attack: 15, Defense: 5}
	assert.Equal(t, 0, combat.Mitigation(orc, hero))
	assert.Equal(t, 15, combat.BaseDamage(orc, hero))
	assert.Equal(t, 12, combat.ResolveDamage(orc, hero, fixedSrc{0}))
}

func TestResolveDamage_CharacterMitigatesByAttackerStrength(t *testing.T) {
	a := &combat.CharacterCombatant{ID: "a", Str: 9}
	b := &combat.CharacterCombatant{ID: "b", Str: 30}
	assert.Equal(t, 4, combat.Mitigation(a, b))
	assert.Equal(t, 24, combat.BaseDamage(a, b))
}

func TestResolveDamage_Floor(t *testing.T) {
	weak := &combat.MonsterCombatant{ID: "m1", Attack: 1}
	tank := &combat.MonsterCombatant{ID: "m2", Defense: 500}
	assert.Equal(t, 1, combat.BaseDamage(weak, tank))
	assert.Equal(t, 1, combat.ResolveDamage(weak, tank, fixedSrc{0}))
}

// Property: str 14 against defense 2 always deals damage within [28, 43].
func TestProperty_StrengthAgainstDefenseRange(t *testing.T) {
	hero := &combat.CharacterCombatant{ID: "c1", Str: 14}
	gob := &combat.MonsterCombatant{ID: "m1", Defense: 2}
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		d := combat.ResolveDamage(hero, gob, src)
		if d < 28 || d > 43 {
			rt.Fatalf("damage %d outside [28, 43]", d)
		}
	})
}

func genCombatant(rt *rapid.T, label string) combat.Combatant {
	if rapid.Bool().Draw(rt, label+"_isChar") {
		return &combat.CharacterCombatant{
			ID:  rapid.StringMatching(`c[0-9]{1,4}`).Draw(rt, label+"_id"),
			Str: rapid.IntRange(0, 500).Draw(rt, label+"_str"),
			Dex: rapid.IntRange(0, 500).Draw(rt, label+"_dex"),
		}
	}
	return &combat.MonsterCombatant{
		ID:      rapid.StringMatching(`m[0-9]{1,4}`).Draw(rt, label+"_id"),
		Attack:  rapid.IntRange(0, 500).Draw(rt, label+"_atk"),
		Defense: rapid.IntRange(0, 1000).Draw(rt, label+"_def"),
	}
}

// Property: damage is always at least 1.
func TestProperty_DamageFloor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := genCombatant(rt, "attacker")
		d := genCombatant(rt, "defender")
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		if dmg := combat.ResolveDamage(a, d, src); dmg < 1 {
			rt.Fatalf("damage %d < 1", dmg)
		}
	})
}
