package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolStopped is returned by Submit once Stop has been called
var ErrPoolStopped = fmt.Errorf("worker pool stopped")

// Task represents a unit of work to be executed
type Task func(ctx context.Context) error

// PanicError wraps a value recovered from a panicking task
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// PoolMetrics provides metrics about the worker pool's performance
type PoolMetrics struct {
	TotalTasks         int64
	CompletedTasks     int64
	FailedTasks        int64
	ActiveTasks        int64
	PeakActiveTasks    int64
	AverageExecutionMs int64
	TotalExecutionMs   int64
}

// Pool runs submitted tasks on a fixed number of goroutines.
// At most maxWorkers tasks execute at any instant; the rest queue.
type Pool struct {
	maxWorkers int
	tasks      chan job
	wg         sync.WaitGroup
	startOnce  sync.Once

	mu      sync.RWMutex
	stopped bool

	totalTasks     int64
	completedTasks int64
	failedTasks    int64
	activeTasks    int64
	peakActive     int64
	totalExecMs    int64
}

type job struct {
	ctx  context.Context
	task Task
	done func(error)
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(maxWorkers int) (*Pool, error) {
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("maxWorkers must be greater than 0, got %d", maxWorkers)
	}
	return &Pool{
		maxWorkers: maxWorkers,
		tasks:      make(chan job, maxWorkers*2),
	}, nil
}

// Start launches the workers. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// Stop stops accepting work, lets queued tasks drain and waits for the workers
// to exit. It must not be called before Start if tasks are queued.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit queues task, which will be called with ctx. done, if non-nil, is
// called from the worker goroutine with the task's error once it finishes;
// a panic is reported as *PanicError. Submit blocks while the queue is full
// and gives up when ctx ends.
func (p *Pool) Submit(ctx context.Context, task Task, done func(error)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	atomic.AddInt64(&p.totalTasks, 1)

	select {
	case p.tasks <- job{ctx: ctx, task: task, done: done}:
		return nil
	case <-ctx.Done():
		atomic.AddInt64(&p.totalTasks, -1)
		return ctx.Err()
	}
}

// GetMetrics returns the current metrics for the pool
func (p *Pool) GetMetrics() PoolMetrics {
	completed := atomic.LoadInt64(&p.completedTasks)
	failed := atomic.LoadInt64(&p.failedTasks)
	total := atomic.LoadInt64(&p.totalExecMs)

	finished := completed + failed
	if finished < 1 {
		finished = 1
	}

	return PoolMetrics{
		TotalTasks:         atomic.LoadInt64(&p.totalTasks),
		CompletedTasks:     completed,
		FailedTasks:        failed,
		ActiveTasks:        atomic.LoadInt64(&p.activeTasks),
		PeakActiveTasks:    atomic.LoadInt64(&p.peakActive),
		AverageExecutionMs: total / finished,
		TotalExecutionMs:   total,
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.tasks {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	active := atomic.AddInt64(&p.activeTasks, 1)
	for {
		peak := atomic.LoadInt64(&p.peakActive)
		if active <= peak || atomic.CompareAndSwapInt64(&p.peakActive, peak, active) {
			break
		}
	}

	start := time.Now()
	err := safeRun(j.ctx, j.task)
	atomic.AddInt64(&p.totalExecMs, time.Since(start).Milliseconds())
	atomic.AddInt64(&p.activeTasks, -1)

	if err != nil {
		atomic.AddInt64(&p.failedTasks, 1)
	} else {
		atomic.AddInt64(&p.completedTasks, 1)
	}

	if j.done != nil {
		j.done(err)
	}
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return task(ctx)
}
