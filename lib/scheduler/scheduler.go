// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/immortal/lib/clock"
	"github.com/bureau-foundation/immortal/lib/uid"
)

var (
	// ErrInvalidInterval is returned by AddTask for a non-positive
	// interval.
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")

	// ErrDuplicateID is returned by AddTask when the minted identifier
	// is already registered.
	ErrDuplicateID = errors.New("scheduler: duplicate task identifier")

	// ErrAlreadyRunning is returned by Run when another Run call is
	// active on the same scheduler.
	ErrAlreadyRunning = errors.New("scheduler: already running")

	// ErrRunning is returned by Close while Run is active.
	ErrRunning = errors.New("scheduler: cannot close while running")
)

// Config holds the dependencies of a Scheduler. Zero values select
// the real clock and a logger that discards everything.
type Config struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// Scheduler owns a set of periodic tasks and the loop that runs them.
// All methods are safe to call from any goroutine, including from
// inside a task's Run.
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	tasks map[uid.ID]*entry

	running       atomic.Bool
	stopRequested atomic.Bool

	// wake interrupts the loop's sleep when the task set changes or
	// Stop is called. Capacity 1: pending wakeups coalesce.
	wake chan struct{}
}

// New returns an empty scheduler that is not running.
func New(config Config) *Scheduler {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		clock:  config.Clock,
		logger: config.Logger,
		tasks:  make(map[uid.ID]*entry),
		wake:   make(chan struct{}, 1),
	}
}

// AddTask registers task to run every interval, first at now+interval.
// On failure it returns uid.Invalid() together with the reason.
func (s *Scheduler) AddTask(task Task, interval time.Duration) (uid.ID, error) {
	if interval <= 0 {
		return uid.Invalid(), ErrInvalidInterval
	}

	id := uid.New()
	added := &entry{
		id:       id,
		task:     task,
		interval: interval,
		due:      s.clock.Now().Add(interval),
	}

	s.mu.Lock()
	if _, exists := s.tasks[id]; exists {
		s.mu.Unlock()
		return uid.Invalid(), ErrDuplicateID
	}
	s.tasks[id] = added
	s.mu.Unlock()

	s.logger.Debug("task added", "task", id.String(), "interval", interval)
	s.signalWake()
	return id, nil
}

// AddFunc registers a task built from closures. See Funcs.
func (s *Scheduler) AddFunc(action func() bool, cleanup func(), interval time.Duration) (uid.ID, error) {
	return s.AddTask(Funcs{OnRun: action, OnCleanup: cleanup}, interval)
}

// RemoveTask removes the task with the given id and invokes its
// cleanup. Returns false when no such task is registered.
func (s *Scheduler) RemoveTask(id uid.ID) bool {
	s.mu.Lock()
	removed, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	removed.cleanup()
	s.logger.Debug("task removed", "task", id.String())
	s.signalWake()
	return true
}

// Clear removes every task, invoking each cleanup.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	removed := make([]*entry, 0, len(s.tasks))
	for _, e := range s.tasks {
		removed = append(removed, e)
	}
	s.tasks = make(map[uid.ID]*entry)
	s.mu.Unlock()

	for _, e := range removed {
		e.cleanup()
	}
	if len(removed) > 0 {
		s.logger.Debug("tasks cleared", "count", len(removed))
	}
	s.signalWake()
}

// Size returns the number of registered tasks.
func (s *Scheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// IsEmpty reports whether no tasks are registered.
func (s *Scheduler) IsEmpty() bool { return s.Size() == 0 }

// Running reports whether Run is active.
func (s *Scheduler) Running() bool { return s.running.Load() }

// Run blocks, running tasks as they come due, until Stop is called.
// A Stop issued before Run makes Run return immediately. With no
// tasks registered, Run sleeps until a task is added or Stop is
// called.
func (s *Scheduler) Run() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		s.stopRequested.Store(false)
		s.running.Store(false)
	}()

	for !s.stopRequested.Load() {
		due, ok := s.nextDue()
		if !ok {
			<-s.wake
			continue
		}

		timer := s.clock.NewTimer(due.Sub(s.clock.Now()))
		select {
		case <-timer.C:
			s.sweep()
		case <-s.wake:
			timer.Stop()
		}
	}
	return nil
}

// Stop asks Run to return. It does not interrupt a running task; Run
// returns once the current sweep has finished. Idempotent.
func (s *Scheduler) Stop() {
	s.stopRequested.Store(true)
	s.signalWake()
}

// Close removes every task, invoking each cleanup. The scheduler must
// not be running.
func (s *Scheduler) Close() error {
	if s.running.Load() {
		return ErrRunning
	}
	s.Clear()
	return nil
}

// nextDue returns the earliest due time among registered tasks.
func (s *Scheduler) nextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var earliest time.Time
	found := false
	for _, e := range s.tasks {
		if !found || e.due.Before(earliest) {
			earliest = e.due
			found = true
		}
	}
	return earliest, found
}

// sweep runs every task whose due time has passed, once each, in due
// order. A task removed by an earlier action in the same sweep is
// skipped.
func (s *Scheduler) sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]*entry, 0, len(s.tasks))
	for _, e := range s.tasks {
		if !e.due.After(now) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id.Counter < due[j].id.Counter
		}
		return due[i].due.Before(due[j].due)
	})

	for _, e := range due {
		if !s.registered(e) {
			continue
		}

		keep := e.task.Run()

		s.mu.Lock()
		stillRegistered := s.tasks[e.id] == e
		if stillRegistered {
			if keep {
				e.due = e.due.Add(e.interval)
			} else {
				delete(s.tasks, e.id)
			}
		}
		s.mu.Unlock()

		if stillRegistered && !keep {
			e.cleanup()
			s.logger.Debug("task finished", "task", e.id.String())
		}
	}
}

func (s *Scheduler) registered(e *entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[e.id] == e
}

func (s *Scheduler) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
