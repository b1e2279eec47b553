package world

import (
	"fmt"
	"slices"
)

// Manager indexes the world map. It is immutable after construction and safe for concurrent use.
type Manager struct {
	zones map[string]*Zone
	order []string
	start string
}

// NewManager creates a Manager from zones and verifies every adjacency resolves.
//
// Precondition: zones must contain at least one zone; the first safe zone (or the first zone)
// is the starting zone.
// Postcondition: Returns a Manager, or an error on duplicate ids or dangling adjacency.
func NewManager(zones []*Zone) (*Manager, error) {
	if len(zones) == 0 {
		return nil, fmt.Errorf("world: at least one zone is required")
	}
	m := &Manager{zones: make(map[string]*Zone, len(zones))}
	for _, z := range zones {
		if _, exists := m.zones[z.ID]; exists {
			return nil, fmt.Errorf("duplicate zone ID: %q", z.ID)
		}
		m.zones[z.ID] = z
		m.order = append(m.order, z.ID)
		if m.start == "" && z.Safe {
			m.start = z.ID
		}
	}
	if m.start == "" {
		m.start = zones[0].ID
	}
	for _, z := range zones {
		for _, adj := range z.Adjacent {
			if _, ok := m.zones[adj]; !ok {
				return nil, fmt.Errorf("zone %q: adjacent zone %q is unknown", z.ID, adj)
			}
		}
	}
	return m, nil
}

// NewDefaultManager returns a Manager over DefaultZones.
func NewDefaultManager() *Manager {
	m, err := NewManager(DefaultZones())
	if err != nil {
		panic(err)
	}
	return m
}

// Zone returns the zone with id.
//
// Postcondition: Returns (zone, true) if found, or (nil, false) otherwise.
func (m *Manager) Zone(id string) (*Zone, bool) {
	z, ok := m.zones[id]
	return z, ok
}

// StartZone returns the id of the zone new characters start in.
func (m *Manager) StartZone() string {
	return m.start
}

// Adjacent returns the ids of the zones next to id; unknown ids have no neighbors.
func (m *Manager) Adjacent(id string) []string {
	z, ok := m.zones[id]
	if !ok {
		return nil
	}
	return slices.Clone(z.Adjacent)
}

// Name returns the display name of id, or "???" for unknown zones.
func (m *Manager) Name(id string) string {
	if z, ok := m.zones[id]; ok {
		return z.Name
	}
	return "???"
}

// All returns every zone in load order.
func (m *Manager) All() []*Zone {
	out := make([]*Zone, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.zones[id])
	}
	return out
}
