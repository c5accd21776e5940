package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"iconforge/internal/config"
	"iconforge/internal/pipeline"
	"iconforge/internal/tui"
)

var (
	genOutputDir string
	genPreset    string
	genBG        string
	genFG        string
	genFit       string
	genParallel  bool
	genWorkers   int
	genExecutor  string
	genNoTUI     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] <source>",
	Short: "Generate icon assets from a source SVG or image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := configurePipeline(args[0])
		if err != nil {
			return err
		}
		return runGenerate(p, genOutputDir)
	},
}

func configurePipeline(source string) (*pipeline.Pipeline, error) {
	p, err := pipeline.New(source)
	if err != nil {
		return nil, err
	}
	p.SetLogger(newLogger())

	presetName := genPreset
	if presetName == "" {
		presetName = "web"
	}
	if err := p.UsePreset(presetName); err != nil {
		return nil, err
	}

	if genBG != "" || genFG != "" {
		if err := p.SetColors(genFG, genBG); err != nil {
			return nil, err
		}
	}

	fit, err := config.ParseFitMode(genFit)
	if err != nil {
		return nil, err
	}
	p.SetFitMode(fit)

	strategy := config.StrategySequential
	if genParallel {
		strategy = config.StrategyWorkers
	}
	if genExecutor != "" {
		strategy, err = config.ParseStrategy(genExecutor)
		if err != nil {
			return nil, err
		}
	}
	p.SetExecution(strategy, genWorkers)

	return p, nil
}

func runGenerate(p *pipeline.Pipeline, outputDir string) error {
	var generated []string
	var err error

	if verbose || genNoTUI {
		generated, err = p.Generate(context.Background(), outputDir, nil)
	} else {
		updates := make(chan pipeline.Progress, 64)
		model := tui.NewModel(updates)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		generated, err = p.Generate(context.Background(), outputDir, updates)
		close(updates)
		<-uiDone
	}
	if err != nil {
		return err
	}

	outPath := outputDir
	if abs, absErr := filepath.Abs(outputDir); absErr == nil {
		outPath = abs
	}

	rows := []tui.SummaryRow{
		{Label: "Files generated", Value: fmt.Sprintf("%d", len(generated))},
		{Label: "Output directory", Value: outPath},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	sort.Strings(generated)
	for _, path := range generated {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s %s %s\n",
			fileBulletStyle.Render("-"),
			fileNameStyle.Render(filepath.Base(path)),
			fileSizeStyle.Render(formatSize(info.Size())),
		)
	}

	return nil
}

func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d bytes", n)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}

var (
	fileNameStyle   = lipgloss.NewStyle().Foreground(tui.ColorAccent)
	fileSizeStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
	fileBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	generateCmd.Flags().StringVarP(&genOutputDir, "output", "o", "output", "output directory")
	generateCmd.Flags().StringVarP(&genPreset, "preset", "p", "", "preset to use (default: web)")
	generateCmd.Flags().StringVar(&genBG, "bg", "", "background color (hex, e.g. '#282a36')")
	generateCmd.Flags().StringVar(&genFG, "fg", "", "foreground color (hex, e.g. '#f8f8f2')")
	generateCmd.Flags().StringVarP(&genFit, "fit", "f", "cover", "fit mode: cover (crop), contain (pad) or stretch")
	generateCmd.Flags().BoolVarP(&genParallel, "parallel", "P", false, "render outputs concurrently")
	generateCmd.Flags().IntVarP(&genWorkers, "workers", "w", 0, "number of parallel workers (default: CPU count)")
	generateCmd.Flags().StringVar(&genExecutor, "executor", "", "execution strategy: sequential, workers or processes")
	generateCmd.Flags().BoolVar(&genNoTUI, "no-tui", false, "disable the progress UI")

	rootCmd.AddCommand(generateCmd)
}
