package npc

import (
	"fmt"

	"github.com/cory-johannsen/agentrpg/internal/game/dice"
)

// ItemDrop is a single item a monster may drop, with its drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item" json:"item"`
	Chance float64 `yaml:"chance" json:"chance"`
}

// ValidateDrops checks that every drop names an item and has a chance in (0, 1].
func ValidateDrops(drops []ItemDrop) error {
	for i, d := range drops {
		if d.ItemID == "" {
			return fmt.Errorf("drop[%d] must have a non-empty item id", i)
		}
		if d.Chance <= 0 || d.Chance > 1.0 {
			return fmt.Errorf("drop[%d] chance must be in (0, 1.0], got %f", i, d.Chance)
		}
	}
	return nil
}

// RollDrops returns the item ids that pass their chance roll, in table order.
//
// Precondition: src must be non-nil; drops must have passed ValidateDrops.
func RollDrops(drops []ItemDrop, src dice.Source) []string {
	var items []string
	for _, d := range drops {
		if src.Float64() < d.Chance {
			items = append(items, d.ItemID)
		}
	}
	return items
}
