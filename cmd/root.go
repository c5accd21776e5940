package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "iconforge",
	Short: "iconforge - turn one SVG or image into a full icon asset set",
	Long:  "iconforge renders favicons, app icons, multi-size ICO files and web manifest metadata from a single SVG or raster source.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline internals instead of showing the progress UI")
}

// newLogger returns a console logger in verbose mode and a nop logger
// otherwise, so log lines never fight the TUI for the terminal.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
