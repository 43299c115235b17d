// Package timer schedules cancellable delayed callbacks. Real wraps
// time.AfterFunc; Manual runs on a virtual clock for deterministic tests.
package timer

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled callback. Calling it more than once, or after the
// callback already ran, is a no-op.
type Cancel func()

// Scheduler runs fn once after d elapses.
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Real schedules callbacks on the runtime timer. Callbacks run on their own
// goroutine.
type Real struct{}

func (Real) After(d time.Duration, fn func()) Cancel {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

type task struct {
	seq      uint64
	deadline time.Time
	fn       func()
}

// Manual is a virtual clock. Nothing fires until Advance is called, and
// callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks map[uint64]*task
}

var (
	_ Scheduler = (*Manual)(nil)
	_ Clock     = (*Manual)(nil)
)

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start, tasks: make(map[uint64]*task)}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := m.seq
	m.tasks[id] = &task{seq: id, deadline: m.now.Add(d), fn: fn}
	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Pending returns the number of scheduled callbacks that have not fired or
// been cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Advance moves the clock forward by d, firing every callback whose deadline
// falls within the interval in deadline order. Callbacks scheduled by a
// firing callback also run if they fall due before the new time.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		delete(m.tasks, next.seq)
		m.now = next.deadline
		m.mu.Unlock()

		next.fn()
	}
}

func (m *Manual) nextDue(target time.Time) *task {
	due := make([]*task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due[0]
}
