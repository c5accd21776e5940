// Package executor fans independent rendering tasks out under one of three
// strategies (sequential, goroutine pool, worker processes) behind a single
// submit/map/shutdown contract.
package executor

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"go.uber.org/zap"

	"iconforge/internal/config"
)

// Task is one unit of rendering work. It is a plain transferable message:
// the process strategy serializes it to JSON for a worker subprocess, so it
// must not carry live objects. Image is an in-process shortcut only and is
// never serialized; workers rebuild the image from Source.
type Task struct {
	Spec       config.OutputSpec `json:"spec"`
	Fit        config.FitMode    `json:"fit"`
	Background string            `json:"background,omitempty"`
	OutPath    string            `json:"out_path"`

	// Source is the PNG-encoded working image.
	Source []byte `json:"source,omitempty"`

	// Image is the decoded working image, shared read-only between
	// in-process tasks. Runners must copy before mutating.
	Image image.Image `json:"-"`
}

// Result is the outcome of one task.
type Result struct {
	Path string
	Err  error
}

// Future is a handle to a task's eventual result. For the sequential
// strategy the result is already computed when the future is returned.
type Future interface {
	Wait() (string, error)
}

// Runner executes a task in-process and returns the generated file path.
type Runner func(ctx context.Context, t Task) (string, error)

// Executor runs batches of independent tasks.
//
// Map returns the generated paths and the first failure observed while
// collecting results, wrapped with the offending output name. Parallel
// strategies never cancel dispatched siblings; their results are simply
// discarded once an error has been recorded.
type Executor interface {
	Submit(ctx context.Context, t Task) Future
	Map(ctx context.Context, tasks []Task) ([]string, error)
	Shutdown(wait bool)
}

// Options configures New.
type Options struct {
	Strategy config.Strategy
	Workers  int // <= 0 means runtime.NumCPU()
	Runner   Runner
	Logger   *zap.Logger
}

// New builds an executor for the requested strategy.
func New(opts Options) Executor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	switch opts.Strategy {
	case config.StrategyWorkers:
		return newPoolExecutor(opts)
	case config.StrategyProcesses:
		return newProcessExecutor(opts)
	default:
		return &sequentialExecutor{runner: opts.Runner, logger: opts.Logger}
	}
}

type settled struct {
	idx  int
	path string
	err  error
}

// collect drains every future, preserving the no-cancellation semantics:
// all dispatched tasks run to completion even after a failure. Paths come
// back in completion order.
func collect(futures []Future, tasks []Task) ([]string, error) {
	done := make(chan settled, len(futures))
	for i := range futures {
		go func(i int) {
			path, err := futures[i].Wait()
			done <- settled{idx: i, path: path, err: err}
		}(i)
	}

	paths := make([]string, 0, len(futures))
	var firstErr error
	for range futures {
		s := <-done
		if s.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("generate %s: %w", tasks[s.idx].Spec.Name, s.err)
			}
			continue
		}
		paths = append(paths, s.path)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return paths, nil
}

type readyFuture Result

func (f readyFuture) Wait() (string, error) { return f.Path, f.Err }

type chanFuture chan Result

func (f chanFuture) Wait() (string, error) {
	r := <-f
	return r.Path, r.Err
}
