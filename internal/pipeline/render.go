package pipeline

import (
	"context"
	"fmt"
	"image"

	"iconforge/internal/config"
	"iconforge/internal/executor"
	"iconforge/internal/raster"
)

// RunTask renders one output file. It is the single render entry point for
// every execution strategy: in-process executors call it directly and the
// render-worker subcommand calls it after decoding a task from stdin.
//
// The task's working image is never mutated; rendering always starts from
// an independent copy.
func RunTask(ctx context.Context, eng raster.Engine, t executor.Task) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var img image.Image
	if t.Image != nil {
		img = eng.Clone(t.Image)
	} else {
		var err error
		img, err = eng.DecodePNG(t.Source)
		if err != nil {
			return "", fmt.Errorf("decode working image: %w", err)
		}
	}

	switch t.Spec.Format {
	case config.FormatPNG:
		w, h := t.Spec.Size()
		var resized image.Image
		switch t.Fit {
		case config.FitContain:
			var err error
			resized, err = eng.ResizeContain(img, w, h, t.Background)
			if err != nil {
				return "", err
			}
		case config.FitStretch:
			resized = eng.Resize(img, w, h)
		default:
			resized = eng.ResizeCover(img, w, h)
		}
		if err := eng.ExportPNG(resized, t.OutPath); err != nil {
			return "", err
		}

	case config.FormatICO:
		// The full-resolution working image goes to the encoder; the output
		// entry's own width/height are not consulted. The encoder embeds
		// its standard 16/32/48 variants.
		if err := eng.ExportICO(img, t.OutPath, nil); err != nil {
			return "", err
		}

	case config.FormatSVG:
		return "", fmt.Errorf("svg outputs are copied verbatim, not rendered")

	case config.FormatWebP:
		return "", fmt.Errorf("webp export not implemented")

	default:
		return "", fmt.Errorf("unsupported format %q", t.Spec.Format)
	}

	return t.OutPath, nil
}
