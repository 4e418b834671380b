package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is one predefined aggregation: the artifact to write and the
// selector to collect with.
type Preset struct {
	Artifact string `yaml:"artifact"`
	Selector string `yaml:"selector"`
}

// DefaultPresets returns the four standard aggregations.
func DefaultPresets() []Preset {
	return []Preset{
		{Artifact: "stats-datatable-only.json", Selector: ".//dataTable"},
		{Artifact: "stats-below-datatable.json", Selector: ".//dataTable//*"},
		{Artifact: "stats-below-attribute.json", Selector: ".//attributeList/attribute//*"},
		{Artifact: "stats-all-elements.json", Selector: ".//*"},
	}
}

// LoadPresets reads a YAML preset file of the form:
//
//	presets:
//	  - artifact: stats-units.json
//	    selector: .//standardUnit
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var file struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	if err := ValidatePresets(file.Presets); err != nil {
		return nil, fmt.Errorf("invalid presets %s: %w", path, err)
	}
	return file.Presets, nil
}

// ValidatePresets rejects empty preset lists, incomplete entries and
// artifacts listed more than once.
func ValidatePresets(presets []Preset) error {
	if len(presets) == 0 {
		return errors.New("no presets defined")
	}
	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if strings.TrimSpace(p.Artifact) == "" {
			return fmt.Errorf("preset %d: artifact cannot be empty", i+1)
		}
		if strings.TrimSpace(p.Selector) == "" {
			return fmt.Errorf("preset %d: selector cannot be empty", i+1)
		}
		if seen[p.Artifact] {
			return fmt.Errorf("preset %d: duplicate artifact %s", i+1, p.Artifact)
		}
		seen[p.Artifact] = true
	}
	return nil
}
