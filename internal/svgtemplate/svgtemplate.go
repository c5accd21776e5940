// Package svgtemplate ships starter SVG sources for users without artwork.
package svgtemplate

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed templates/*.svg
var templateFS embed.FS

// Materialize writes the named built-in template into dir and returns its
// path. Unknown names fail with an error listing every available template.
func Materialize(name, dir string) (string, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".svg")
	if err != nil {
		return "", fmt.Errorf("template %q not found, available: %s", name, strings.Join(List(), ", "))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".svg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// List returns the names of all built-in templates, sorted.
func List() []string {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".svg"))
	}
	sort.Strings(names)
	return names
}
