package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// sequentialExecutor runs every task inline on the caller. Errors surface
// synchronously at the point of submission, so a failing batch never starts
// later tasks.
type sequentialExecutor struct {
	runner Runner
	logger *zap.Logger
}

func (e *sequentialExecutor) Submit(ctx context.Context, t Task) Future {
	path, err := e.runner(ctx, t)
	if err != nil {
		e.logger.Debug("task failed", zap.String("output", t.Spec.Name), zap.Error(err))
	}
	return readyFuture{Path: path, Err: err}
}

func (e *sequentialExecutor) Map(ctx context.Context, tasks []Task) ([]string, error) {
	paths := make([]string, 0, len(tasks))
	for _, t := range tasks {
		path, err := e.runner(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", t.Spec.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *sequentialExecutor) Shutdown(bool) {}
