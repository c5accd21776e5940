package raster

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	ico "github.com/sergeymakinen/go-ico"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ImagingBackend implements Engine on top of disintegration/imaging for
// raster work, oksvg/rasterx for vector rasterization and go-ico for icon
// encoding. All scaling uses Lanczos resampling.
type ImagingBackend struct{}

func NewImagingBackend() *ImagingBackend {
	return &ImagingBackend{}
}

func (b *ImagingBackend) LoadSVG(path string, width, height int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, fmt.Errorf("parse svg %s: %w", path, err)
	}

	vbW, vbH := icon.ViewBox.W, icon.ViewBox.H
	if vbW <= 0 || vbH <= 0 {
		vbW, vbH = 1, 1
	}
	switch {
	case width > 0 && height <= 0:
		height = int(math.Round(float64(width) * vbH / vbW))
	case height > 0 && width <= 0:
		width = int(math.Round(float64(height) * vbW / vbH))
	case width <= 0 && height <= 0:
		width, height = int(math.Round(vbW)), int(math.Round(vbH))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	return imaging.Clone(img), nil
}

func (b *ImagingBackend) LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return imaging.Clone(img), nil
}

func (b *ImagingBackend) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func (b *ImagingBackend) ResizeCover(img image.Image, width, height int) image.Image {
	srcW, srcH := b.Size(img)
	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(width) / float64(height)

	var cropBox image.Rectangle
	if srcRatio > targetRatio {
		// Source is relatively wider: trim the sides. Integer division
		// leaves any odd remainder pixel on the right.
		newW := int(float64(srcH) * targetRatio)
		left := (srcW - newW) / 2
		cropBox = image.Rect(left, 0, left+newW, srcH)
	} else {
		newH := int(float64(srcW) / targetRatio)
		top := (srcH - newH) / 2
		cropBox = image.Rect(0, top, srcW, top+newH)
	}

	cropped := imaging.Crop(img, cropBox)
	return imaging.Resize(cropped, width, height, imaging.Lanczos)
}

func (b *ImagingBackend) ResizeContain(img image.Image, width, height int, bgHex string) (image.Image, error) {
	if bgHex == "" {
		bgHex = "#00000000"
	}
	bg, err := ParseHexColor(bgHex)
	if err != nil {
		return nil, err
	}

	srcW, srcH := b.Size(img)
	srcRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(width) / float64(height)

	var newW, newH int
	if srcRatio > targetRatio {
		newW = width
		newH = int(math.Round(float64(width) / srcRatio))
	} else {
		newH = height
		newW = int(math.Round(float64(height) * srcRatio))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
	canvas := imaging.New(width, height, bg)
	return imaging.Paste(canvas, resized, image.Pt((width-newW)/2, (height-newH)/2)), nil
}

func (b *ImagingBackend) ApplyBackground(img image.Image, hex string) (image.Image, error) {
	bg, err := ParseHexColor(hex)
	if err != nil {
		return nil, err
	}
	w, h := b.Size(img)
	canvas := imaging.New(w, h, bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0), nil
}

func (b *ImagingBackend) Recolor(img image.Image, fgHex, bgHex string) (image.Image, error) {
	out := b.Clone(img)
	if bgHex != "" {
		var err error
		out, err = b.ApplyBackground(out, bgHex)
		if err != nil {
			return nil, err
		}
	}
	// fgHex is intentionally unused for now; see Engine.Recolor.
	_ = fgHex
	return out, nil
}

func (b *ImagingBackend) ExportPNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png %s: %w", path, err)
	}
	return f.Close()
}

func (b *ImagingBackend) ExportICO(img image.Image, path string, sizes []int) error {
	if len(sizes) == 0 {
		sizes = DefaultICOSizes
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	variants := make([]image.Image, 0, len(sizes))
	for _, size := range sizes {
		variants = append(variants, imaging.Resize(img, size, size, imaging.Lanczos))
	}

	var buf bytes.Buffer
	if err := ico.EncodeAll(&buf, variants); err != nil {
		return fmt.Errorf("encode ico %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (b *ImagingBackend) Size(img image.Image) (int, int) {
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (b *ImagingBackend) Clone(img image.Image) image.Image {
	return imaging.Clone(img)
}

func (b *ImagingBackend) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *ImagingBackend) DecodePNG(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

var _ Engine = (*ImagingBackend)(nil)
