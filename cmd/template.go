package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"iconforge/internal/svgtemplate"
)

var templateCmd = &cobra.Command{
	Use:   "template [flags] <name>",
	Short: "Generate icon assets from a built-in starter template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := os.MkdirTemp("", "iconforge-template-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(workDir)

		source, err := svgtemplate.Materialize(args[0], workDir)
		if err != nil {
			return err
		}

		p, err := configurePipeline(source)
		if err != nil {
			return err
		}
		return runGenerate(p, genOutputDir)
	},
}

func init() {
	templateCmd.Flags().StringVarP(&genOutputDir, "output", "o", "output", "output directory")
	templateCmd.Flags().StringVarP(&genPreset, "preset", "p", "", "preset to use (default: web)")
	templateCmd.Flags().StringVar(&genBG, "bg", "", "background color (hex)")
	templateCmd.Flags().StringVar(&genFG, "fg", "", "foreground color (hex)")
	templateCmd.Flags().StringVarP(&genFit, "fit", "f", "cover", "fit mode: cover, contain or stretch")
	templateCmd.Flags().BoolVarP(&genParallel, "parallel", "P", false, "render outputs concurrently")
	templateCmd.Flags().IntVarP(&genWorkers, "workers", "w", 0, "number of parallel workers")
	templateCmd.Flags().BoolVar(&genNoTUI, "no-tui", false, "disable the progress UI")

	rootCmd.AddCommand(templateCmd)
}
