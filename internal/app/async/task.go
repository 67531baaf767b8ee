// Package async runs delayed work that its caller can abandon.
package async

import (
	"context"
	"sync"
	"time"
)

// Task is a unit of delayed work bound to a context. Cancelling the task or
// its parent context before the delay elapses prevents the work from
// running; work already running can poll Alive to stop applying results.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Run schedules fn to run after delay. fn receives the task context and the
// task's liveness check.
func Run(ctx context.Context, delay time.Duration, fn func(ctx context.Context, alive func() bool) error) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		ctx:    taskCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-taskCtx.Done():
			t.setErr(taskCtx.Err())
			return
		case <-timer.C:
		}

		t.setErr(fn(taskCtx, t.Alive))
	}()

	return t
}

// Alive reports whether the caller still wants the result.
func (t *Task) Alive() bool {
	return t.ctx.Err() == nil
}

// Cancel abandons the task. It is safe to call more than once and after
// completion.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task has finished or been abandoned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its outcome: fn's error,
// or the context error when the task was abandoned before running.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}
