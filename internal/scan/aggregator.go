package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudsweep/internal/logging"
	"cloudsweep/internal/worker"
)

var (
	// ErrInvalidParallelism is returned when maxParallel is not positive
	ErrInvalidParallelism = errors.New("maxParallel must be greater than 0")
	// ErrDuplicateTask is returned when two tasks share a name
	ErrDuplicateTask = errors.New("duplicate task name")
	// ErrInvalidTask is returned for a task without a name or function
	ErrInvalidTask = errors.New("invalid task")
)

// Progress is reported after each task completes.
type Progress struct {
	Completed    int
	Total        int
	Scanner      string
	RunningTotal float64
	Err          error
}

// ProgressFunc receives progress updates. It is always called from a single
// goroutine, in completion order.
type ProgressFunc func(Progress)

type options struct {
	progress    ProgressFunc
	taskTimeout time.Duration
}

// Option configures RunBatch
type Option func(*options)

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithTaskTimeout gives every task its own deadline. Zero disables it.
// A task that overruns is recorded as a failure.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *options) { o.taskTimeout = d }
}

type completion struct {
	name  string
	value interface{}
	err   error
}

// RunBatch runs tasks on a pool of maxParallel workers and aggregates their
// results as they complete. A failing or panicking task is recorded in
// Errors and never aborts the rest of the batch. If ctx ends first the
// partial result is discarded and ctx.Err() is returned.
func RunBatch(ctx context.Context, tasks []Task, maxParallel int, opts ...Option) (*BatchResult, error) {
	if maxParallel <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidParallelism, maxParallel)
	}
	if err := validateTasks(tasks); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	result := &BatchResult{
		Findings: make(map[string][]Finding, len(tasks)),
		Errors:   make(map[string]string),
		Warnings: make(map[string][]string),
	}
	if len(tasks) == 0 {
		return result, nil
	}

	pool, err := worker.NewPool(maxParallel)
	if err != nil {
		return nil, err
	}
	pool.Start()

	start := time.Now()
	completions := make(chan completion, len(tasks))

	go func() {
		for _, t := range tasks {
			t := t
			var value interface{}
			run := func(taskCtx context.Context) error {
				if o.taskTimeout > 0 {
					var cancel context.CancelFunc
					taskCtx, cancel = context.WithTimeout(taskCtx, o.taskTimeout)
					defer cancel()
				}
				logging.Debug("Starting scanner", map[string]interface{}{"scanner": t.Name})
				v, err := t.Run(taskCtx)
				if o.taskTimeout > 0 && ctx.Err() == nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
					if err == nil {
						err = taskCtx.Err()
					}
					err = fmt.Errorf("timed out after %s: %w", o.taskTimeout, err)
				}
				value = v
				return err
			}
			done := func(err error) {
				completions <- completion{name: t.Name, value: value, err: err}
			}
			if err := pool.Submit(ctx, run, done); err != nil {
				return
			}
		}
	}()

	completed := 0
	for completed < len(tasks) {
		select {
		case <-ctx.Done():
			go pool.Stop()
			logging.Warn("Scan batch cancelled", map[string]interface{}{
				"completed": completed,
				"total":     len(tasks),
			})
			return nil, ctx.Err()
		case c := <-completions:
			completed++
			collect(result, c)
			if o.progress != nil {
				o.progress(Progress{
					Completed:    completed,
					Total:        len(tasks),
					Scanner:      c.name,
					RunningTotal: result.TotalMonthlyCost,
					Err:          c.err,
				})
			}
		}
	}

	pool.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	result.PeakParallel = int(pool.GetMetrics().PeakActiveTasks)
	return result, nil
}

// collect folds one completion into result. Only the collector goroutine calls it.
func collect(result *BatchResult, c completion) {
	if c.err != nil {
		result.Findings[c.name] = []Finding{}
		result.Errors[c.name] = c.err.Error()
		logging.ScannerError(c.name, c.err)
		return
	}

	findings, warnings := NormalizeAll(c.value)
	result.Findings[c.name] = findings
	if len(warnings) > 0 {
		result.Warnings[c.name] = warnings
		for _, w := range warnings {
			logging.Warn("Malformed scanner result", map[string]interface{}{
				"scanner": c.name,
				"warning": w,
			})
		}
	}

	subtotal := 0.0
	for _, f := range findings {
		subtotal += f.MonthlyCost
	}
	result.TotalMonthlyCost += subtotal
	logging.ScannerComplete(c.name, len(findings), subtotal)
}

func validateTasks(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return fmt.Errorf("%w: task %d has no name", ErrInvalidTask, i)
		}
		if t.Run == nil {
			return fmt.Errorf("%w: task %q has no function", ErrInvalidTask, t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateTask, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}
