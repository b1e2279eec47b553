package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlWorldFile is the top-level YAML structure for the zones file.
type yamlWorldFile struct {
	Zones []yamlZone `yaml:"zones"`
}

// yamlZone is the YAML representation of a zone.
type yamlZone struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	MinLevel    int      `yaml:"min_level"`
	DangerLevel int      `yaml:"danger_level"`
	Safe        bool     `yaml:"safe"`
	Adjacent    []string `yaml:"adjacent"`
}

// LoadZonesFromFile reads and validates the zones file at path.
//
// Precondition: path must point to a valid YAML zones file.
// Postcondition: Returns validated zones or a non-nil error.
func LoadZonesFromFile(path string) ([]*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zones file %s: %w", path, err)
	}
	return LoadZonesFromBytes(data)
}

// LoadZonesFromBytes parses and validates zones from YAML bytes.
//
// Postcondition: Returns validated zones or a non-nil error.
func LoadZonesFromBytes(data []byte) ([]*Zone, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zones YAML: %w", err)
	}
	if len(file.Zones) == 0 {
		return nil, fmt.Errorf("zones file defines no zones")
	}

	zones := make([]*Zone, 0, len(file.Zones))
	for _, yz := range file.Zones {
		z := &Zone{
			ID:          yz.ID,
			Name:        yz.Name,
			Description: yz.Description,
			MinLevel:    yz.MinLevel,
			DangerLevel: yz.DangerLevel,
			Safe:        yz.Safe,
			Adjacent:    yz.Adjacent,
		}
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("validating zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, nil
}
