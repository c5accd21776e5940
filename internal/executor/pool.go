package executor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// poolExecutor dispatches tasks to a bounded pool of goroutines over a jobs
// channel and hands each submission a one-shot result channel.
type poolExecutor struct {
	runner Runner
	logger *zap.Logger

	jobs chan submission
	wg   sync.WaitGroup

	closeOnce sync.Once
}

type submission struct {
	ctx  context.Context
	task Task
	out  chanFuture
}

func newPoolExecutor(opts Options) *poolExecutor {
	p := &poolExecutor{
		runner: opts.Runner,
		logger: opts.Logger,
		jobs:   make(chan submission, opts.Workers*2),
	}

	p.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go p.worker(i)
	}
	p.logger.Debug("worker pool started", zap.Int("workers", opts.Workers))

	return p
}

func (p *poolExecutor) worker(id int) {
	defer p.wg.Done()

	for sub := range p.jobs {
		start := time.Now()
		path, err := p.runner(sub.ctx, sub.task)
		p.logger.Debug("task finished",
			zap.Int("worker", id),
			zap.String("output", sub.task.Spec.Name),
			zap.Duration("took", time.Since(start)),
			zap.Bool("failed", err != nil),
		)
		sub.out <- Result{Path: path, Err: err}
	}
}

func (p *poolExecutor) Submit(ctx context.Context, t Task) Future {
	out := make(chanFuture, 1)
	p.jobs <- submission{ctx: ctx, task: t, out: out}
	return out
}

func (p *poolExecutor) Map(ctx context.Context, tasks []Task) ([]string, error) {
	futures := make([]Future, len(tasks))
	for i, t := range tasks {
		futures[i] = p.Submit(ctx, t)
	}
	return collect(futures, tasks)
}

func (p *poolExecutor) Shutdown(wait bool) {
	p.closeOnce.Do(func() { close(p.jobs) })
	if wait {
		p.wg.Wait()
	}
}
