// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the time source behind the task scheduler.
//
// The scheduler never calls time.Now or time.NewTimer directly. It
// holds a [Clock]: [Real] in production, [Fake] in tests. A FakeClock
// stands still until Advance is called, so a test can register
// heartbeat tasks, advance exactly one check interval, and observe
// exactly one sweep.
//
// # FakeClock Synchronization
//
// The scheduler loop arms one timer per sleep. Tests call
// WaitForTimers before Advance so the loop has reached its sleep:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	s := scheduler.New(scheduler.Config{Clock: c})
//	go s.Run()
//	c.WaitForTimers(1)
//	c.Advance(6 * time.Second)
//
// Stop disarms a timer at once, so a loop woken early by AddTask or
// Stop that re-arms its sleep is counted only once.
package clock
