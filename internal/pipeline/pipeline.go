// Package pipeline orchestrates one generation run: load the source once,
// apply the global background, fan out per-output rendering, copy vector
// outputs verbatim and optionally emit a web manifest.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"iconforge/internal/config"
	"iconforge/internal/executor"
	"iconforge/internal/manifest"
	"iconforge/internal/preset"
	"iconforge/internal/raster"
	"iconforge/pkg/imgutil"
)

// workingWidth is the rasterization width for SVG sources. Rendering from a
// large working image keeps quality headroom for every downstream size.
const workingWidth = 1024

// Progress is one update on the UI channel: deltas the progress view folds
// into its counters.
type Progress struct {
	TotalDelta int
	DoneDelta  int
	ErrorDelta int
}

// Pipeline is a builder session: configure it with the Set/Add/Use calls,
// then run Generate. A pipeline may be generated into several directories;
// each run reloads the source.
type Pipeline struct {
	source string
	engine raster.Engine
	logger *zap.Logger

	colors      config.ColorConfig
	outputs     []config.OutputSpec
	preset      *preset.Preset
	genManifest bool
	fit         config.FitMode
	strategy    config.Strategy
	workers     int
}

// New starts a pipeline for the given source file. The path is checked
// immediately so configuration mistakes surface before any rendering.
func New(source string) (*Pipeline, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("source file not found: %s", source)
	}
	return &Pipeline{
		source: source,
		engine: raster.NewImagingBackend(),
		logger: zap.NewNop(),
		fit:    config.FitCover,
	}, nil
}

func (p *Pipeline) SetEngine(e raster.Engine) { p.engine = e }

func (p *Pipeline) SetLogger(l *zap.Logger) {
	if l != nil {
		p.logger = l
	}
}

// UsePreset loads a named preset. Its manifest flag becomes the pipeline's
// manifest setting; SetManifest afterwards overrides it.
func (p *Pipeline) UsePreset(name string) error {
	pr, err := preset.Load(name)
	if err != nil {
		return err
	}
	p.preset = pr
	p.genManifest = pr.GenerateManifest
	return nil
}

// AddOutput appends a custom output specification. Height zero means
// square.
func (p *Pipeline) AddOutput(name string, format config.Format, width, height int) error {
	spec := config.OutputSpec{Name: name, Format: format, Width: width, Height: height}
	if err := spec.Validate(); err != nil {
		return err
	}
	p.outputs = append(p.outputs, spec)
	return nil
}

// SetColors configures the color theme. Empty strings leave a channel
// unchanged.
func (p *Pipeline) SetColors(foreground, background string) error {
	c := config.ColorConfig{Foreground: foreground, Background: background}
	if err := c.Validate(); err != nil {
		return err
	}
	p.colors = c
	return nil
}

func (p *Pipeline) SetFitMode(m config.FitMode) { p.fit = m }

// SetExecution picks the fan-out strategy. Workers <= 0 means the
// executor's default.
func (p *Pipeline) SetExecution(s config.Strategy, workers int) {
	p.strategy = s
	p.workers = workers
}

func (p *Pipeline) SetManifest(on bool) { p.genManifest = on }

// Generate runs the pipeline into outDir and returns every generated file
// path. Order matches submission only under the sequential strategy.
// Progress updates are sent to updates when it is non-nil; the caller owns
// closing it.
func (p *Pipeline) Generate(ctx context.Context, outDir string, updates chan<- Progress) ([]string, error) {
	all := make([]config.OutputSpec, 0, len(p.outputs))
	all = append(all, p.outputs...)
	if p.preset != nil {
		all = append(all, p.preset.Outputs...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no outputs configured: load a preset or add an output spec")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	p.logger.Info("loading source", zap.String("source", p.source))
	img, err := p.loadSource()
	if err != nil {
		return nil, err
	}

	// Global color pre-processing happens once, before any fan-out.
	if p.colors.Foreground != "" || p.colors.Background != "" {
		img, err = p.engine.Recolor(img, p.colors.Foreground, p.colors.Background)
		if err != nil {
			return nil, err
		}
	}

	var svgSpecs, rasterSpecs []config.OutputSpec
	for _, spec := range all {
		if spec.Format == config.FormatSVG {
			svgSpecs = append(svgSpecs, spec)
		} else {
			rasterSpecs = append(rasterSpecs, spec)
		}
	}

	emit(updates, Progress{TotalDelta: len(all)})

	tasks, err := p.buildTasks(img, rasterSpecs, outDir)
	if err != nil {
		return nil, err
	}

	exec := executor.New(executor.Options{
		Strategy: p.strategy,
		Workers:  p.workers,
		Logger:   p.logger,
		Runner: func(ctx context.Context, t executor.Task) (string, error) {
			path, runErr := RunTask(ctx, p.engine, t)
			if runErr != nil {
				emit(updates, Progress{ErrorDelta: 1})
			} else {
				emit(updates, Progress{DoneDelta: 1})
			}
			return path, runErr
		},
	})
	defer exec.Shutdown(true)

	p.logger.Info("rendering outputs",
		zap.Int("count", len(tasks)),
		zap.String("strategy", p.strategy.String()),
		zap.String("fit", p.fit.String()),
	)
	generated, err := exec.Map(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if p.strategy == config.StrategyProcesses {
		// Worker subprocesses report completion wholesale; the in-process
		// runner was never invoked for them.
		emit(updates, Progress{DoneDelta: len(generated)})
	}

	svgPaths, err := p.copySVGOutputs(svgSpecs, outDir)
	if err != nil {
		return nil, err
	}
	for range svgPaths {
		emit(updates, Progress{DoneDelta: 1})
	}
	generated = append(generated, svgPaths...)

	if p.genManifest {
		exp := manifest.Exporter{
			ThemeColor:      p.colors.Foreground,
			BackgroundColor: p.colors.Background,
		}
		path, err := exp.Write(all, outDir)
		if err != nil {
			return nil, fmt.Errorf("write manifest: %w", err)
		}
		generated = append(generated, path)
	}

	p.logger.Info("generation done", zap.Int("files", len(generated)))
	return generated, nil
}

// loadSource rasterizes vector sources at the working resolution and
// decodes raster sources natively. Detection is content-first with an
// extension fallback, so a .xml or extensionless SVG still rasterizes.
func (p *Pipeline) loadSource() (image.Image, error) {
	kind, err := imgutil.SniffFile(p.source)
	if err != nil {
		return nil, err
	}
	if kind.Vector() || strings.EqualFold(filepath.Ext(p.source), ".svg") {
		return p.engine.LoadSVG(p.source, workingWidth, 0)
	}
	return p.engine.LoadImage(p.source)
}

// buildTasks turns specs into executor tasks. In-process strategies share
// the working image read-only; the process strategy gets PNG bytes instead,
// encoded once here.
func (p *Pipeline) buildTasks(img image.Image, specs []config.OutputSpec, outDir string) ([]executor.Task, error) {
	var source []byte
	if p.strategy == config.StrategyProcesses {
		var err error
		source, err = p.engine.EncodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("encode working image: %w", err)
		}
	}

	tasks := make([]executor.Task, 0, len(specs))
	for _, spec := range specs {
		t := executor.Task{
			Spec:       spec,
			Fit:        p.fit,
			Background: p.colors.Background,
			OutPath:    filepath.Join(outDir, spec.Name),
		}
		if source != nil {
			t.Source = source
		} else {
			t.Image = img
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// copySVGOutputs writes verbatim byte copies of the source file; vector
// outputs are never re-rendered.
func (p *Pipeline) copySVGOutputs(specs []config.OutputSpec, outDir string) ([]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(p.source)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(specs))
	for _, spec := range specs {
		dest := filepath.Join(outDir, spec.Name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return nil, fmt.Errorf("copy %s: %w", spec.Name, err)
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func emit(updates chan<- Progress, u Progress) {
	if updates != nil {
		updates <- u
	}
}
