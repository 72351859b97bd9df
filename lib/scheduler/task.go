// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"time"

	"github.com/bureau-foundation/immortal/lib/uid"
)

// Task is a periodic action. Run returns true to be rescheduled after
// its interval and false to be removed from the scheduler.
type Task interface {
	Run() bool
}

// Cleaner is implemented by tasks that release state when removed.
type Cleaner interface {
	Cleanup()
}

// Funcs adapts a pair of closures to Task and Cleaner. Whatever state
// the action or cleanup needs is captured by the closures when the
// task is registered. A nil OnCleanup is a no-op.
type Funcs struct {
	OnRun     func() bool
	OnCleanup func()
}

// Run implements Task.
func (f Funcs) Run() bool { return f.OnRun() }

// Cleanup implements Cleaner.
func (f Funcs) Cleanup() {
	if f.OnCleanup != nil {
		f.OnCleanup()
	}
}

// entry is one registered task.
type entry struct {
	id       uid.ID
	task     Task
	interval time.Duration
	due      time.Time
}

func (e *entry) cleanup() {
	if cleaner, ok := e.task.(Cleaner); ok {
		cleaner.Cleanup()
	}
}
