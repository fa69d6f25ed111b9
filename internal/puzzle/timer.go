package puzzle

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task is a handle to a periodic callback.
type Task interface {
	// Stop cancels the task. After Stop returns the callback never runs again.
	Stop()
}

// Scheduler runs a callback periodically.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// Loop is a Scheduler that does not call callbacks itself. Ticks are handed
// over a channel so the owner of an engine runs them on the same goroutine
// as every other engine call.
type Loop struct {
	c      chan func()
	closed chan struct{}
	once   sync.Once
}

// NewLoop creates a loop scheduler.
func NewLoop() *Loop {
	return &Loop{
		c:      make(chan func(), 16),
		closed: make(chan struct{}),
	}
}

// C returns the channel of due callbacks. The owner must call each one.
func (l *Loop) C() <-chan func() {
	return l.c
}

// Done is closed once the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.closed
}

// Close stops every task of the loop. It is safe to call from any goroutine
// and more than once.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.closed) })
}

// Every implements Scheduler.
func (l *Loop) Every(interval time.Duration, fn func()) Task {
	t := &loopTask{done: make(chan struct{})}
	go t.run(l, interval, fn)
	return t
}

type loopTask struct {
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (t *loopTask) run(l *Loop, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-l.closed:
			t.Stop()
			return
		case <-ticker.C:
			select {
			case l.c <- t.guard(l, fn):
			case <-t.done:
				return
			case <-l.closed:
				t.Stop()
				return
			}
		}
	}
}

// guard drops ticks that were already queued when the task was stopped
// or the loop was closed.
func (t *loopTask) guard(l *Loop, fn func()) func() {
	return func() {
		if t.stopped.Load() {
			return
		}
		select {
		case <-l.closed:
			return
		default:
		}
		fn()
	}
}

func (t *loopTask) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		close(t.done)
	})
}

// ManualScheduler fires callbacks only when advanced explicitly.
// It gives tests and replays full control over elapsed time.
type ManualScheduler struct {
	tasks []*manualTask
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTask struct {
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() {
	t.stopped = true
}

// Every implements Scheduler. The interval is ignored; each Advance step is one period.
func (m *ManualScheduler) Every(_ time.Duration, fn func()) Task {
	t := &manualTask{fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance fires every live task n times.
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		tasks := make([]*manualTask, len(m.tasks))
		copy(tasks, m.tasks)
		for _, t := range tasks {
			if !t.stopped {
				t.fn()
			}
		}
	}
	m.prune()
}

// Active returns the number of tasks that have not been stopped.
func (m *ManualScheduler) Active() int {
	m.prune()
	return len(m.tasks)
}

func (m *ManualScheduler) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live
}

type stoppedTask struct{}

func (stoppedTask) Stop() {}
