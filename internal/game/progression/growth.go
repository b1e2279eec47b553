package progression

import "github.com/cory-johannsen/agentrpg/internal/game/character"

// Growth is the per-level gain of a class.
type Growth struct {
	Stats character.Stats
	HP    int
	MP    int
}

var growthTable = map[character.Class]Growth{
	character.Warrior: {Stats: character.Stats{Str: 3, Dex: 1, Int: 0, Wis: 1, Cha: 1, Luk: 1}, HP: 15, MP: 3},
	character.Mage:    {Stats: character.Stats{Str: 0, Dex: 1, Int: 3, Wis: 2, Cha: 1, Luk: 0}, HP: 5, MP: 15},
	character.Rogue:   {Stats: character.Stats{Str: 1, Dex: 3, Int: 1, Wis: 0, Cha: 1, Luk: 2}, HP: 8, MP: 5},
	character.Cleric:  {Stats: character.Stats{Str: 1, Dex: 1, Int: 1, Wis: 3, Cha: 1, Luk: 0}, HP: 8, MP: 12},
	character.Ranger:  {Stats: character.Stats{Str: 2, Dex: 2, Int: 1, Wis: 1, Cha: 1, Luk: 1}, HP: 10, MP: 6},
}

// skillUnlocks maps class to level to the skills learned on reaching that level.
var skillUnlocks = map[character.Class]map[int][]string{
	character.Warrior: {5: {"power_strike"}, 10: {"whirlwind"}, 15: {"battle_cry"}, 20: {"berserker_rage"}},
	character.Mage:    {5: {"lightning_bolt"}, 10: {"meteor"}, 15: {"mana_shield"}, 20: {"time_stop"}},
	character.Rogue:   {5: {"smoke_bomb"}, 10: {"assassinate"}, 15: {"shadow_step"}, 20: {"death_mark"}},
	character.Cleric:  {5: {"group_heal"}, 10: {"resurrection"}, 15: {"divine_shield"}, 20: {"holy_judgment"}},
	character.Ranger:  {5: {"multi_shot"}, 10: {"beast_tame"}, 15: {"camouflage"}, 20: {"rain_of_arrows"}},
}

// GrowthFor returns the per-level growth of class. Unknown classes grow as rangers.
func GrowthFor(class character.Class) Growth {
	if g, ok := growthTable[class]; ok {
		return g
	}
	return growthTable[character.Ranger]
}

// SkillsAt returns the skills class learns on reaching level, or nil.
func SkillsAt(class character.Class, level int) []string {
	return skillUnlocks[class][level]
}
