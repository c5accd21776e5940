package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"iconforge/internal/config"
)

func specTask(name string) Task {
	return Task{
		Spec:    config.OutputSpec{Name: name, Format: config.FormatPNG, Width: 32},
		OutPath: "/tmp/out/" + name,
	}
}

func TestSequentialRunsInOrder(t *testing.T) {
	var order []string
	exec := New(Options{
		Strategy: config.StrategySequential,
		Runner: func(ctx context.Context, task Task) (string, error) {
			order = append(order, task.Spec.Name)
			return task.OutPath, nil
		},
	})
	defer exec.Shutdown(true)

	tasks := []Task{specTask("a.png"), specTask("b.png"), specTask("c.png")}
	paths, err := exec.Map(context.Background(), tasks)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}
	if got := strings.Join(order, ","); got != "a.png,b.png,c.png" {
		t.Fatalf("execution order: %s", got)
	}
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	var ran []string
	exec := New(Options{
		Strategy: config.StrategySequential,
		Runner: func(ctx context.Context, task Task) (string, error) {
			ran = append(ran, task.Spec.Name)
			if task.Spec.Name == "b.png" {
				return "", errors.New("boom")
			}
			return task.OutPath, nil
		},
	})
	defer exec.Shutdown(true)

	tasks := []Task{specTask("a.png"), specTask("b.png"), specTask("c.png")}
	_, err := exec.Map(context.Background(), tasks)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "generate b.png") {
		t.Fatalf("error should name the failing output: %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("later tasks should not start after a failure, ran %v", ran)
	}
}

func TestPoolCompletesAllTasks(t *testing.T) {
	var done atomic.Int32
	exec := New(Options{
		Strategy: config.StrategyWorkers,
		Workers:  4,
		Runner: func(ctx context.Context, task Task) (string, error) {
			done.Add(1)
			return task.OutPath, nil
		},
	})

	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = specTask(fmt.Sprintf("icon-%02d.png", i))
	}

	paths, err := exec.Map(context.Background(), tasks)
	exec.Shutdown(true)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if done.Load() != 20 || len(paths) != 20 {
		t.Fatalf("done=%d paths=%d, want 20/20", done.Load(), len(paths))
	}

	// Paths come back in completion order; the set must still be complete.
	sort.Strings(paths)
	for i, p := range paths {
		if want := fmt.Sprintf("/tmp/out/icon-%02d.png", i); p != want {
			t.Fatalf("path %d: got %s, want %s", i, p, want)
		}
	}
}

func TestPoolSiblingsRunToCompletionAfterFailure(t *testing.T) {
	var done atomic.Int32
	exec := New(Options{
		Strategy: config.StrategyWorkers,
		Workers:  2,
		Runner: func(ctx context.Context, task Task) (string, error) {
			done.Add(1)
			if task.Spec.Name == "bad.png" {
				return "", errors.New("render exploded")
			}
			return task.OutPath, nil
		},
	})

	tasks := []Task{specTask("bad.png"), specTask("a.png"), specTask("b.png"), specTask("c.png")}
	_, err := exec.Map(context.Background(), tasks)
	exec.Shutdown(true)

	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "generate bad.png") {
		t.Fatalf("error should name the failing output: %v", err)
	}
	if !strings.Contains(err.Error(), "render exploded") {
		t.Fatalf("error should wrap the cause: %v", err)
	}
	if done.Load() != 4 {
		t.Fatalf("all dispatched tasks should finish, got %d of 4", done.Load())
	}
}

func TestPoolSubmitReturnsFuture(t *testing.T) {
	release := make(chan struct{})
	exec := New(Options{
		Strategy: config.StrategyWorkers,
		Workers:  1,
		Runner: func(ctx context.Context, task Task) (string, error) {
			<-release
			return task.OutPath, nil
		},
	})
	defer exec.Shutdown(true)

	fut := exec.Submit(context.Background(), specTask("slow.png"))
	close(release)

	path, err := fut.Wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if path != "/tmp/out/slow.png" {
		t.Fatalf("got %s", path)
	}
}

func TestPoolShutdownIdempotent(t *testing.T) {
	exec := New(Options{
		Strategy: config.StrategyWorkers,
		Workers:  2,
		Runner: func(ctx context.Context, task Task) (string, error) {
			return task.OutPath, nil
		},
	})
	exec.Shutdown(true)
	exec.Shutdown(true)
	exec.Shutdown(false)
}

func TestDefaultWorkersIsNumCPU(t *testing.T) {
	exec := New(Options{
		Strategy: config.StrategyWorkers,
		Runner: func(ctx context.Context, task Task) (string, error) {
			return task.OutPath, nil
		},
	})
	defer exec.Shutdown(true)

	// Saturating NumCPU concurrent submissions must not deadlock.
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fut := exec.Submit(context.Background(), specTask(fmt.Sprintf("n%d.png", i)))
			if _, err := fut.Wait(); err != nil {
				t.Errorf("wait: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestProcessExecutorCollectsWorkerOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub worker uses /bin/sh")
	}

	p := newProcessExecutor(Options{Workers: 2, Logger: zap.NewNop(), Strategy: config.StrategyProcesses})
	p.newCmd = func(ctx context.Context) (*exec.Cmd, error) {
		// Echo a fixed path instead of re-execing the binary.
		return exec.CommandContext(ctx, "/bin/sh", "-c", "cat > /dev/null; echo /tmp/out/fake.png"), nil
	}

	paths, err := p.Map(context.Background(), []Task{specTask("fake.png")})
	p.Shutdown(true)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/tmp/out/fake.png" {
		t.Fatalf("got %v", paths)
	}
}

func TestProcessExecutorSurfacesWorkerStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub worker uses /bin/sh")
	}

	p := newProcessExecutor(Options{Workers: 1, Logger: zap.NewNop(), Strategy: config.StrategyProcesses})
	p.newCmd = func(ctx context.Context) (*exec.Cmd, error) {
		return exec.CommandContext(ctx, "/bin/sh", "-c", "cat > /dev/null; echo 'cannot decode source' >&2; exit 1"), nil
	}

	_, err := p.Map(context.Background(), []Task{specTask("broken.png")})
	p.Shutdown(true)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "generate broken.png") {
		t.Fatalf("error should name the output: %v", err)
	}
	if !strings.Contains(err.Error(), "cannot decode source") {
		t.Fatalf("error should carry worker stderr: %v", err)
	}
}

func TestProcessExecutorRejectsEmptyWorkerOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub worker uses /bin/sh")
	}

	p := newProcessExecutor(Options{Workers: 1, Logger: zap.NewNop(), Strategy: config.StrategyProcesses})
	p.newCmd = func(ctx context.Context) (*exec.Cmd, error) {
		return exec.CommandContext(ctx, "/bin/sh", "-c", "cat > /dev/null"), nil
	}

	_, err := p.Map(context.Background(), []Task{specTask("silent.png")})
	p.Shutdown(true)
	if err == nil || !strings.Contains(err.Error(), "no output path") {
		t.Fatalf("expected missing-path error, got %v", err)
	}
}

func TestTaskJSONExcludesLiveImage(t *testing.T) {
	task := specTask("favicon-32x32.png")
	task.Fit = config.FitContain
	task.Background = "#ffffff"
	task.Source = []byte{0x89, 0x50, 0x4e, 0x47}

	payload, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), `"Image"`) || strings.Contains(string(payload), `"image"`) {
		t.Fatalf("live image must not cross the process boundary: %s", payload)
	}

	var back Task
	if err := json.Unmarshal(payload, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Spec.Name != task.Spec.Name || back.Fit != task.Fit || back.Background != task.Background {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if len(back.Source) != len(task.Source) {
		t.Fatalf("source bytes lost: %d vs %d", len(back.Source), len(task.Source))
	}
}
