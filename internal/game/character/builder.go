package character

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// MaxNameLength is the longest accepted character name, in runes.
const MaxNameLength = 32

// Build constructs a new level-1 Character for agentID from the class profile.
// Vitals start full, status idle, location the starting zone.
//
// Precondition: agentID and name must be non-empty; class must be valid.
// Postcondition: Returns a Character ready for persistence, or a validation error.
func Build(agentID, name string, class Class, now time.Time) (*Character, error) {
	name = strings.TrimSpace(name)
	if agentID == "" {
		return nil, gameerr.Validationf("agent id must not be empty")
	}
	if name == "" {
		return nil, gameerr.Validationf("character name must not be empty")
	}
	if len([]rune(name)) > MaxNameLength {
		return nil, gameerr.Validationf("character name must be at most %d characters", MaxNameLength)
	}
	def, ok := class.Def()
	if !ok {
		return nil, gameerr.Validationf("unknown class %q", class)
	}

	return &Character{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Name:      name,
		Class:     class,
		Level:     1,
		Exp:       0,
		HP:        def.BaseHP,
		MaxHP:     def.BaseHP,
		MP:        def.BaseMP,
		MaxMP:     def.BaseMP,
		Stats:     def.BaseStats,
		Skills:    slices.Clone(def.Skills),
		Status:    StatusIdle,
		Zone:      StartingZone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
