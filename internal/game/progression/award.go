package progression

import (
	"math"
	"slices"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
)

// LevelUpResult describes one level gained.
type LevelUpResult struct {
	NewLevel  int             `json:"new_level"`
	StatGains character.Stats `json:"stat_gains"`
	HPGain    int             `json:"hp_gain"`
	MPGain    int             `json:"mp_gain"`
	NewSkills []string        `json:"new_skills"`
}

// AwardResult is the outcome of an experience award.
type AwardResult struct {
	CharacterID string          `json:"character_id"`
	ExpGained   int64           `json:"exp_gained"`
	LevelUps    []LevelUpResult `json:"level_ups"`
}

// Award grants amount experience to c, with the party bonus when inParty, and applies every
// level gained one at a time.
//
// Experience saturates at MaxExp; the excess is dropped.
//
// Precondition: c must be non-nil; amount >= 0.
// Postcondition: c.Level never decreases and never exceeds MaxLevel; 0 <= c.Exp <= MaxExp;
// c.HP <= c.MaxHP and c.MP <= c.MaxMP; an award of zero leaves the level unchanged.
func Award(c *character.Character, amount float64, inParty bool) AwardResult {
	mult := 1.0
	if inParty {
		mult = PartyBonus
	}
	gained := saturatingGain(c.Exp, math.Floor(max(amount, 0)*mult))
	c.Exp += gained

	res := AwardResult{CharacterID: c.ID, ExpGained: gained}
	target := max(c.Level, LevelFromExp(c.Exp))
	for c.Level < target {
		res.LevelUps = append(res.LevelUps, LevelUp(c))
	}
	return res
}

// LevelUp advances c by exactly one level, applying the class growth and skill unlocks.
// Current HP and MP rise by the same delta as their maxima.
//
// Precondition: c.Level < MaxLevel.
func LevelUp(c *character.Character) LevelUpResult {
	g := GrowthFor(c.Class)
	c.Level++
	c.Stats = c.Stats.Add(g.Stats)
	c.MaxHP += g.HP
	c.MaxMP += g.MP
	c.HP = min(c.HP+g.HP, c.MaxHP)
	c.MP = min(c.MP+g.MP, c.MaxMP)

	var learned []string
	for _, s := range SkillsAt(c.Class, c.Level) {
		if !c.HasSkill(s) {
			learned = append(learned, s)
		}
	}
	c.AddSkills(learned...)

	return LevelUpResult{
		NewLevel:  c.Level,
		StatGains: g.Stats,
		HPGain:    g.HP,
		MPGain:    g.MP,
		NewSkills: slices.Clip(learned),
	}
}

// saturatingGain returns raw as an int64, reduced so that exp plus the result stays within MaxExp.
func saturatingGain(exp int64, raw float64) int64 {
	room := MaxExp - max(exp, 0)
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	if raw >= float64(room) {
		return room
	}
	return min(int64(raw), room)
}
