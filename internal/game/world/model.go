// Package world defines the zone map characters explore.
package world

import "fmt"

// Zone is an explorable area.
//
// Invariant: a Safe zone never produces hostile encounters.
type Zone struct {
	// ID uniquely identifies the zone.
	ID string
	// Name is shown to characters who have explored the zone.
	Name string
	// Description is flavor text.
	Description string
	// MinLevel is the lowest character level allowed to enter.
	MinLevel int
	// DangerLevel scales encounter frequency and group size.
	DangerLevel int
	// Safe marks zones without encounters.
	Safe bool
	// Adjacent lists the ids of neighboring zones.
	Adjacent []string
}

// Validate checks that the zone satisfies its invariants.
//
// Precondition: z must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, MinLevel >= 0,
// 0 <= DangerLevel <= 10 and no adjacency points back at the zone itself.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone: id must not be empty")
	}
	if z.Name == "" {
		return fmt.Errorf("zone %q: name must not be empty", z.ID)
	}
	if z.MinLevel < 0 {
		return fmt.Errorf("zone %q: min_level must be >= 0", z.ID)
	}
	if z.DangerLevel < 0 || z.DangerLevel > 10 {
		return fmt.Errorf("zone %q: danger_level must be in [0, 10]", z.ID)
	}
	for _, adj := range z.Adjacent {
		if adj == z.ID {
			return fmt.Errorf("zone %q: zone cannot be adjacent to itself", z.ID)
		}
	}
	return nil
}

// DefaultZones returns the built-in world map.
func DefaultZones() []*Zone {
	return []*Zone{
		{
			ID: "town_plaza", Name: "Starting Village", MinLevel: 0, DangerLevel: 0, Safe: true,
			Description: "A peaceful town plaza.",
			Adjacent:    []string{"goblin_forest", "dark_cave"},
		},
		{
			ID: "goblin_forest", Name: "Unknown Forest", MinLevel: 1, DangerLevel: 2,
			Adjacent: []string{"town_plaza", "orc_camp", "skeleton_dungeon"},
		},
		{
			ID: "dark_cave", Name: "Dark Cave", MinLevel: 3, DangerLevel: 3,
			Adjacent: []string{"town_plaza", "skeleton_dungeon"},
		},
		{
			ID: "skeleton_dungeon", Name: "Ancient Dungeon", MinLevel: 5, DangerLevel: 5,
			Adjacent: []string{"goblin_forest", "dark_cave", "dragon_peak"},
		},
		{
			ID: "orc_camp", Name: "Encampment", MinLevel: 5, DangerLevel: 4,
			Adjacent: []string{"goblin_forest", "dragon_peak"},
		},
		{
			ID: "dragon_peak", Name: "Dragon's Peak", MinLevel: 10, DangerLevel: 8,
			Adjacent: []string{"skeleton_dungeon", "orc_camp"},
		},
	}
}
