// Package manifest emits the site.webmanifest document describing generated
// PNG icons for web-application installability.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"iconforge/internal/config"
)

// FileName is the manifest's name inside the output directory.
const FileName = "site.webmanifest"

// maskableMinWidth is the smallest icon width marked "any maskable".
const maskableMinWidth = 192

// Icon is one entry of the manifest's icons array.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type document struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	Icons           []Icon `json:"icons"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
	Display         string `json:"display"`
}

// Exporter builds and writes manifests. Zero-value fields fall back to
// white colors and standalone display.
type Exporter struct {
	Name            string
	ShortName       string
	ThemeColor      string
	BackgroundColor string
	Display         string
}

// Write scans outputs for PNG entries and writes the manifest into dir,
// returning its path. Icons of width >= 192 are marked maskable.
func (e Exporter) Write(outputs []config.OutputSpec, dir string) (string, error) {
	icons := make([]Icon, 0, len(outputs))
	for _, spec := range outputs {
		if spec.Format != config.FormatPNG {
			continue
		}
		w, h := spec.Size()
		icon := Icon{
			Src:   "/" + spec.Name,
			Sizes: fmt.Sprintf("%dx%d", w, h),
			Type:  "image/png",
		}
		if w >= maskableMinWidth {
			icon.Purpose = "any maskable"
		}
		icons = append(icons, icon)
	}

	doc := document{
		Name:            e.Name,
		ShortName:       e.ShortName,
		Icons:           icons,
		ThemeColor:      orDefault(e.ThemeColor, "#ffffff"),
		BackgroundColor: orDefault(e.BackgroundColor, "#ffffff"),
		Display:         orDefault(e.Display, "standalone"),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
