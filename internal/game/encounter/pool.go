package encounter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/agentrpg/internal/game/npc"
)

// PoolEntry is one weighted candidate of the wandering-monster pool.
type PoolEntry struct {
	TemplateID string `yaml:"template"`
	Weight     int    `yaml:"weight"`
	MinLevel   int    `yaml:"min_level"`
}

type yamlPoolFile struct {
	Pool []PoolEntry `yaml:"pool"`
}

// DefaultPool returns the built-in wandering-monster pool.
func DefaultPool() []PoolEntry {
	return []PoolEntry{
		{TemplateID: "goblin", Weight: 30, MinLevel: 1},
		{TemplateID: "slime", Weight: 25, MinLevel: 1},
		{TemplateID: "skeleton", Weight: 20, MinLevel: 3},
		{TemplateID: "orc", Weight: 15, MinLevel: 5},
		{TemplateID: "dragon_whelp", Weight: 5, MinLevel: 10},
	}
}

// ValidatePool checks that every entry has a positive weight and references a known template.
//
// Precondition: templates must be non-nil.
func ValidatePool(pool []PoolEntry, templates *npc.Registry) error {
	if len(pool) == 0 {
		return fmt.Errorf("encounter pool: at least one entry is required")
	}
	for i, e := range pool {
		if e.Weight <= 0 {
			return fmt.Errorf("encounter pool: entry[%d] weight must be > 0", i)
		}
		if e.MinLevel < 0 {
			return fmt.Errorf("encounter pool: entry[%d] min_level must be >= 0", i)
		}
		if _, ok := templates.Get(e.TemplateID); !ok {
			return fmt.Errorf("encounter pool: entry[%d] references unknown template %q", i, e.TemplateID)
		}
	}
	return nil
}

// LoadPoolFromFile reads the pool YAML file at path and validates it against templates.
//
// Postcondition: Returns a validated pool or a non-nil error.
func LoadPoolFromFile(path string, templates *npc.Registry) ([]PoolEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encounter pool %s: %w", path, err)
	}
	return LoadPoolFromBytes(data, templates)
}

// LoadPoolFromBytes parses the pool from YAML bytes and validates it against templates.
func LoadPoolFromBytes(data []byte, templates *npc.Registry) ([]PoolEntry, error) {
	var file yamlPoolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing encounter pool YAML: %w", err)
	}
	if err := ValidatePool(file.Pool, templates); err != nil {
		return nil, err
	}
	return file.Pool, nil
}
