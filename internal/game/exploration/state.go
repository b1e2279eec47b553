// Package exploration moves characters between zones and turns monster encounters into combat.
package exploration

import (
	"context"
	"slices"
	"time"

	"github.com/cory-johannsen/agentrpg/internal/game/encounter"
)

// State is a character's exploration progress.
type State struct {
	CharacterID        string               `json:"character_id"`
	CurrentZone        string               `json:"current_zone"`
	ExploredZones      []string             `json:"explored_zones"`
	DiscoveredMonsters []string             `json:"discovered_monsters"`
	ActiveEncounter    *encounter.Encounter `json:"active_encounter,omitempty"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewState returns the initial state of a character standing in startZone.
func NewState(characterID, startZone string) *State {
	return &State{
		CharacterID:   characterID,
		CurrentZone:   startZone,
		ExploredZones: []string{startZone},
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	cp := *s
	cp.ExploredZones = slices.Clone(s.ExploredZones)
	cp.DiscoveredMonsters = slices.Clone(s.DiscoveredMonsters)
	if s.ActiveEncounter != nil {
		cp.ActiveEncounter = s.ActiveEncounter.Clone()
	}
	return &cp
}

// markExplored records zoneID as explored.
func (s *State) markExplored(zoneID string) {
	if !slices.Contains(s.ExploredZones, zoneID) {
		s.ExploredZones = append(s.ExploredZones, zoneID)
	}
}

// discover records monster names the character has now seen.
func (s *State) discover(names ...string) {
	for _, n := range names {
		if !slices.Contains(s.DiscoveredMonsters, n) {
			s.DiscoveredMonsters = append(s.DiscoveredMonsters, n)
		}
	}
}

// StateRepository stores exploration states keyed by character id.
//
// Get of a character that never explored returns an error matching gameerr.ErrNotFound.
type StateRepository interface {
	Get(ctx context.Context, characterID string) (*State, error)
	Save(ctx context.Context, s *State) error
}
