// Package preset holds the built-in catalog of named output collections.
package preset

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"iconforge/internal/config"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Preset is a named, ordered collection of output specifications.
type Preset struct {
	Name             string              `yaml:"name"`
	Description      string              `yaml:"description"`
	Outputs          []config.OutputSpec `yaml:"outputs"`
	GenerateManifest bool                `yaml:"generate_manifest"`
}

// Load reads the named built-in preset. Unknown names fail with an error
// listing every available preset.
func Load(name string) (*Preset, error) {
	data, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("preset %q not found, available: %s", name, strings.Join(List(), ", "))
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	for _, spec := range p.Outputs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return &p, nil
}

// List returns the names of all built-in presets, sorted.
func List() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
