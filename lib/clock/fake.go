// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a manually driven Clock. Its time moves only through
// Advance, and its timers fire only then.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	at time.Time
	c  chan time.Time
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{now: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTimer arms a timer for now+d. A non-positive d delivers on C at
// once and arms nothing.
func (c *FakeClock) NewTimer(d time.Duration) *Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return &Timer{C: ch, stopFunc: func() bool { return false }}
	}

	armed := &fakeTimer{at: c.now.Add(d), c: ch}
	c.pending = append(c.pending, armed)
	c.changed.Broadcast()
	return &Timer{C: ch, stopFunc: func() bool { return c.disarm(armed) }}
}

// disarm drops armed from the pending set and reports whether it was
// still there.
func (c *FakeClock) disarm(armed *fakeTimer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.pending, armed)
	if i < 0 {
		return false
	}
	c.pending = slices.Delete(c.pending, i, i+1)
	c.changed.Broadcast()
	return true
}

// Advance moves time forward by d, then fires every armed timer due by
// the new time, earliest first. Each fired timer receives the new time.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due []*fakeTimer
	c.pending = slices.DeleteFunc(c.pending, func(armed *fakeTimer) bool {
		if armed.at.After(now) {
			return false
		}
		due = append(due, armed)
		return true
	})
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *fakeTimer) int { return a.at.Compare(b.at) })
	for _, armed := range due {
		armed.c <- now
	}
}

// WaitForTimers blocks until n timers are armed. Tests call it before
// Advance so the scheduler loop is known to be asleep.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns how many timers are armed.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
