package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"iconforge/internal/preset"
	"iconforge/internal/svgtemplate"
	"iconforge/internal/tui"
)

var listPresetsCmd = &cobra.Command{
	Use:   "list-presets",
	Short: "List the built-in output presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range preset.List() {
			p, err := preset.Load(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s %s\n",
				listNameStyle.Render(name),
				listDescStyle.Render(fmt.Sprintf("%s (%d outputs)", p.Description, len(p.Outputs))),
			)
		}
		return nil
	},
}

var listTemplatesCmd = &cobra.Command{
	Use:   "list-templates",
	Short: "List the built-in starter templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := svgtemplate.List()
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, listDescStyle.Render("(no templates installed)"))
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(os.Stdout, listNameStyle.Render(name))
		}
		return nil
	},
}

var (
	listNameStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	listDescStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(listPresetsCmd)
	rootCmd.AddCommand(listTemplatesCmd)
}
