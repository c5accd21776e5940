package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WorkerCommand is the hidden CLI subcommand worker subprocesses run. It
// reads one JSON-encoded Task from stdin and prints the generated path.
const WorkerCommand = "render-worker"

// processExecutor re-execs the current binary once per task, bounded by a
// semaphore. Tasks cross the process boundary as JSON, so they carry the
// PNG-encoded source instead of a live image.
type processExecutor struct {
	logger *zap.Logger
	sem    chan struct{}

	// newCmd is swapped out by tests.
	newCmd func(ctx context.Context) (*exec.Cmd, error)
}

func newProcessExecutor(opts Options) *processExecutor {
	return &processExecutor{
		logger: opts.Logger,
		sem:    make(chan struct{}, opts.Workers),
		newCmd: selfWorkerCommand,
	}
}

func selfWorkerCommand(ctx context.Context) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate worker binary: %w", err)
	}
	return exec.CommandContext(ctx, exe, WorkerCommand), nil
}

func (p *processExecutor) Submit(ctx context.Context, t Task) Future {
	out := make(chanFuture, 1)
	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		path, err := p.runWorker(ctx, t)
		out <- Result{Path: path, Err: err}
	}()
	return out
}

func (p *processExecutor) runWorker(ctx context.Context, t Task) (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode worker task: %w", err)
	}

	cmd, err := p.newCmd(ctx)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	p.logger.Debug("worker process finished",
		zap.String("output", t.Spec.Name),
		zap.Duration("took", time.Since(start)),
		zap.Bool("failed", runErr != nil),
	)

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("render worker: %s", msg)
		}
		return "", fmt.Errorf("render worker: %w", runErr)
	}

	path := strings.TrimSpace(stdout.String())
	if path == "" {
		return "", fmt.Errorf("render worker returned no output path")
	}
	return path, nil
}

func (p *processExecutor) Map(ctx context.Context, tasks []Task) ([]string, error) {
	futures := make([]Future, len(tasks))
	for i, t := range tasks {
		futures[i] = p.Submit(ctx, t)
	}
	return collect(futures, tasks)
}

// Shutdown drains the semaphore so in-flight workers finish before return.
func (p *processExecutor) Shutdown(wait bool) {
	if !wait {
		return
	}
	for i := 0; i < cap(p.sem); i++ {
		p.sem <- struct{}{}
	}
}
