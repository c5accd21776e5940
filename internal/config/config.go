package config

import (
	"fmt"
	"strings"
)

// Format identifies a supported output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatICO  Format = "ico"
	FormatSVG  Format = "svg"
	FormatWebP Format = "webp" // accepted but not renderable yet
)

var formats = map[Format]bool{
	FormatPNG:  true,
	FormatICO:  true,
	FormatSVG:  true,
	FormatWebP: true,
}

// OutputSpec describes one desired output file. Immutable after creation.
type OutputSpec struct {
	Name   string `yaml:"name" json:"name"`
	Format Format `yaml:"format" json:"format"`
	Width  int    `yaml:"width" json:"width"`
	// Height defaults to Width when zero (square output).
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// Size returns the effective (width, height) pair.
func (s OutputSpec) Size() (int, int) {
	if s.Height > 0 {
		return s.Width, s.Height
	}
	return s.Width, s.Width
}

func (s OutputSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("output spec: name must not be empty")
	}
	if !formats[s.Format] {
		return fmt.Errorf("output spec %q: unsupported format %q (supported: png, ico, svg, webp)", s.Name, s.Format)
	}
	if s.Width < 1 {
		return fmt.Errorf("output spec %q: width must be positive, got %d", s.Name, s.Width)
	}
	if s.Height < 0 {
		return fmt.Errorf("output spec %q: height must be positive, got %d", s.Name, s.Height)
	}
	return nil
}

// ColorConfig holds the optional color theme. Empty strings mean
// "leave unchanged".
type ColorConfig struct {
	Foreground string
	Background string
}

func (c ColorConfig) Validate() error {
	for _, hex := range []string{c.Foreground, c.Background} {
		if hex == "" {
			continue
		}
		if err := validateHex(hex); err != nil {
			return err
		}
	}
	return nil
}

func validateHex(hex string) error {
	raw := strings.TrimPrefix(hex, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return fmt.Errorf("invalid hex color %q: want #rrggbb or #rrggbbaa", hex)
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("invalid hex color %q: bad digit %q", hex, r)
		}
	}
	return nil
}

// FitMode controls how a differing source aspect ratio is reconciled with
// the target dimensions.
type FitMode int

const (
	// FitCover crops overflow and fills the target exactly. Default.
	FitCover FitMode = iota
	// FitContain pads with the background color, keeping all content.
	FitContain
	// FitStretch scales both axes independently, distorting aspect ratio.
	FitStretch
)

func (m FitMode) String() string {
	switch m {
	case FitContain:
		return "contain"
	case FitStretch:
		return "stretch"
	default:
		return "cover"
	}
}

func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(s) {
	case "cover", "":
		return FitCover, nil
	case "contain":
		return FitContain, nil
	case "stretch":
		return FitStretch, nil
	default:
		return FitCover, fmt.Errorf("unknown fit mode %q (want cover, contain or stretch)", s)
	}
}

// Strategy selects how per-output rendering work is executed.
type Strategy int

const (
	// StrategySequential runs outputs one at a time on the caller. Default.
	StrategySequential Strategy = iota
	// StrategyWorkers fans out to a bounded goroutine pool.
	StrategyWorkers
	// StrategyProcesses fans out to worker subprocesses; task payloads must
	// be fully serializable.
	StrategyProcesses
)

func (s Strategy) String() string {
	switch s {
	case StrategyWorkers:
		return "workers"
	case StrategyProcesses:
		return "processes"
	default:
		return "sequential"
	}
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "sequential", "":
		return StrategySequential, nil
	case "workers", "threads", "threadpool":
		return StrategyWorkers, nil
	case "processes", "processpool":
		return StrategyProcesses, nil
	default:
		return StrategySequential, fmt.Errorf("unknown executor %q (want sequential, workers or processes)", s)
	}
}
