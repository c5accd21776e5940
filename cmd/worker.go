package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"iconforge/internal/executor"
	"iconforge/internal/pipeline"
	"iconforge/internal/raster"
)

// workerCmd is the entry point for process-parallel rendering. The parent
// writes one JSON task to stdin; the worker prints the generated path to
// stdout and reports failures on stderr with a non-zero exit.
var workerCmd = &cobra.Command{
	Use:          executor.WorkerCommand,
	Hidden:       true,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read task: %w", err)
		}

		var task executor.Task
		if err := json.Unmarshal(payload, &task); err != nil {
			return fmt.Errorf("decode task: %w", err)
		}

		path, err := pipeline.RunTask(context.Background(), raster.NewImagingBackend(), task)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
