// Package debounce coalesces bursts of triggers into a single delayed call.
package debounce

import (
	"context"
	"sync"
	"time"
)

type taskState int

const (
	statePending taskState = iota
	stateRunning
	stateCanceled
	stateDone
)

// Task is one scheduled call. Once its function has started, canceling it
// has no effect; a newer task only supersedes it.
type Task struct {
	gen   uint64
	timer *time.Timer
	done  chan struct{}

	mu    sync.Mutex
	state taskState
}

// Generation is the position of the task in its debouncer's schedule order.
func (t *Task) Generation() uint64 {
	return t.gen
}

// Done is closed once the function returned or the task was canceled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops a pending task. It reports whether the function was prevented from running.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != statePending {
		return false
	}
	t.state = stateCanceled
	t.timer.Stop()
	close(t.done)
	return true
}

// Canceled reports whether the task was canceled before running.
func (t *Task) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateCanceled
}

func (t *Task) run(ctx context.Context, fn func(ctx context.Context, gen uint64)) {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return
	}
	t.state = stateRunning
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.state = stateDone
		close(t.done)
		t.mu.Unlock()
	}()
	fn(ctx, t.gen)
}

// Debouncer keeps at most one pending task. Scheduling a new task cancels the
// pending one.
type Debouncer struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	gen     uint64
	pending *Task
}

// New creates a debouncer whose tasks run with a context derived from ctx.
// Stop cancels that context.
func New(ctx context.Context) *Debouncer {
	ctx, cancel := context.WithCancel(ctx)
	return &Debouncer{ctx: ctx, cancel: cancel}
}

// Schedule runs fn after delay unless another call to Schedule, or Cancel,
// comes first. fn receives the task generation.
func (d *Debouncer) Schedule(delay time.Duration, fn func(ctx context.Context, gen uint64)) *Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
	}
	d.gen++

	t := &Task{gen: d.gen, done: make(chan struct{})}
	if d.ctx.Err() != nil {
		t.state = stateCanceled
		close(t.done)
		return t
	}

	t.mu.Lock()
	t.timer = time.AfterFunc(delay, func() { t.run(d.ctx, fn) })
	t.mu.Unlock()

	d.pending = t
	return t
}

// Cancel cancels the pending task, if any.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return false
	}
	ok := d.pending.Cancel()
	d.pending = nil
	return ok
}

// Generation returns the generation of the most recently scheduled task.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Stop cancels the pending task and the context of running ones. The
// debouncer schedules nothing afterwards.
func (d *Debouncer) Stop() {
	d.Cancel()
	d.cancel()
}
