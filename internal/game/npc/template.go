// Package npc provides monster template definitions and combat instances.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description,omitempty"`
	Level       int        `yaml:"level" json:"level"`
	MaxHP       int        `yaml:"max_hp" json:"max_hp"`
	Attack      int        `yaml:"attack" json:"attack"`
	Defense     int        `yaml:"defense" json:"defense"`
	ExpReward   int        `yaml:"exp_reward" json:"exp_reward"`
	Drops       []ItemDrop `yaml:"drops" json:"drops,omitempty"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, MaxHP >= 1,
// Attack >= 0, Defense >= 0, ExpReward >= 0 and every drop is valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("monster template %q: max_hp must be >= 1", t.ID)
	}
	if t.Attack < 0 || t.Defense < 0 {
		return fmt.Errorf("monster template %q: attack and defense must be >= 0", t.ID)
	}
	if t.ExpReward < 0 {
		return fmt.Errorf("monster template %q: exp_reward must be >= 0", t.ID)
	}
	if err := ValidateDrops(t.Drops); err != nil {
		return fmt.Errorf("monster template %q: %w", t.ID, err)
	}
	return nil
}

// LoadTemplateFromBytes parses a single monster template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// DefaultTemplates returns the built-in bestiary.
func DefaultTemplates() []*Template {
	return []*Template{
		{
			ID: "goblin", Name: "Goblin", Level: 1, MaxHP: 30, Attack: 8, Defense: 2, ExpReward: 20,
			Drops: []ItemDrop{{ItemID: "gold_coin", Chance: 0.5}, {ItemID: "goblin_ear", Chance: 0.3}},
		},
		{
			ID: "orc", Name: "Orc Warrior", Level: 5, MaxHP: 80, Attack: 15, Defense: 5, ExpReward: 60,
			Drops: []ItemDrop{{ItemID: "gold_coin", Chance: 0.7}, {ItemID: "orc_tusk", Chance: 0.2}},
		},
		{
			ID: "skeleton", Name: "Skeleton Soldier", Level: 3, MaxHP: 40, Attack: 12, Defense: 3, ExpReward: 35,
			Drops: []ItemDrop{{ItemID: "bone_fragment", Chance: 0.6}, {ItemID: "rusty_sword", Chance: 0.1}},
		},
		{
			ID: "dragon_whelp", Name: "Dragon Whelp", Level: 10, MaxHP: 200, Attack: 25, Defense: 10, ExpReward: 200,
			Drops: []ItemDrop{{ItemID: "dragon_scale", Chance: 0.3}, {ItemID: "fire_gem", Chance: 0.1}},
		},
		{
			ID: "slime", Name: "Slime", Level: 1, MaxHP: 20, Attack: 5, Defense: 1, ExpReward: 10,
			Drops: []ItemDrop{{ItemID: "slime_jelly", Chance: 0.8}},
		},
	}
}
