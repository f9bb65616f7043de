package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityTypeField describes one typed field the extraction pipeline should
// populate on entities of a given type.
type EntityTypeField struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required" json:"required"`
	Description string `yaml:"description" json:"description"`
}

// EntityTypeDefault is a config-provided entity-type definition, used to
// seed or reset the registry.
type EntityTypeDefault struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Fields      []EntityTypeField `yaml:"fields" json:"fields"`
}

type entityTypeDefaultsFile struct {
	EntityTypes []EntityTypeDefault `yaml:"entity_types"`
}

// LoadEntityTypeDefaults reads the YAML defaults file. A missing file is not
// an error: the registry simply starts empty.
func LoadEntityTypeDefaults(path string) ([]EntityTypeDefault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read entity type defaults '%s': %w", path, err)
	}

	var file entityTypeDefaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse entity type defaults: %w", err)
	}

	return file.EntityTypes, nil
}
