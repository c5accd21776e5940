// Package raster wraps image decoding, resizing and encoding behind a small
// engine interface so the pipeline never touches codec details directly.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Engine is the image-processing capability the pipeline depends on.
// One concrete backend exists (ImagingBackend); the interface keeps render
// code independent of the codec stack.
type Engine interface {
	// LoadSVG rasterizes a vector file. At least one of width/height should
	// be positive; a missing dimension is derived from the viewBox aspect.
	LoadSVG(path string, width, height int) (image.Image, error)

	// LoadImage decodes a raster file into an NRGBA image, honoring EXIF
	// orientation.
	LoadImage(path string) (image.Image, error)

	// Resize scales both axes independently to exactly (width, height).
	Resize(img image.Image, width, height int) image.Image

	// ResizeCover uniformly scales and center-crops to exactly fill
	// (width, height). Overflow is removed; nothing is padded.
	ResizeCover(img image.Image, width, height int) image.Image

	// ResizeContain uniformly scales to fit inside (width, height) and pads
	// with the background color. Empty bgHex pads fully transparent.
	ResizeContain(img image.Image, width, height int, bgHex string) (image.Image, error)

	// ApplyBackground alpha-composites img over a solid canvas of the same
	// size.
	ApplyBackground(img image.Image, hex string) (image.Image, error)

	// Recolor applies the background via ApplyBackground. The foreground
	// parameter is accepted but has no effect yet; replacing foreground
	// pixels needs content-aware segmentation this engine does not do.
	Recolor(img image.Image, fgHex, bgHex string) (image.Image, error)

	// ExportPNG writes img to path as PNG, creating parent directories.
	ExportPNG(img image.Image, path string) error

	// ExportICO writes a multi-size ICO built from img. A nil sizes slice
	// means 16/32/48. The declared width/height of the output entry are
	// not consulted; the favicon always embeds these variants.
	ExportICO(img image.Image, path string, sizes []int) error

	// Size returns the pixel dimensions of img.
	Size(img image.Image) (int, int)

	// Clone returns an independent deep copy safe to mutate.
	Clone(img image.Image) image.Image

	// EncodePNG and DecodePNG move images across process boundaries.
	EncodePNG(img image.Image) ([]byte, error)
	DecodePNG(data []byte) (image.Image, error)
}

// DefaultICOSizes are the variants embedded into exported ICO files.
var DefaultICOSizes = []int{16, 32, 48}

// ParseHexColor parses #rrggbb or #rrggbbaa (leading # optional) into an
// NRGBA color. Six-digit form is fully opaque.
func ParseHexColor(hex string) (color.NRGBA, error) {
	raw := strings.TrimPrefix(hex, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want #rrggbb or #rrggbbaa", hex)
	}

	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	if len(raw) == 6 {
		return color.NRGBA{
			R: uint8(v >> 16),
			G: uint8(v >> 8),
			B: uint8(v),
			A: 0xff,
		}, nil
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
