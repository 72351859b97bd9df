// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler runs periodic tasks on a single goroutine.
//
// A [Scheduler] holds a set of tasks keyed by [uid.ID]. Each task has
// an interval and a due time; [Scheduler.Run] sleeps until the
// earliest due time, then runs every task that is due. A task's Run
// method returns true to be rescheduled and false to be removed. The
// next due time is the previous due time plus the interval, so
// execution latency does not accumulate into drift.
//
// Removal (explicit, via [Scheduler.Clear], via [Scheduler.Close], or
// because Run returned false) invokes the task's Cleanup exactly once
// when the task implements [Cleaner].
//
// Task actions run without the scheduler's lock held and may call
// AddTask, RemoveTask, Clear, and Stop on the scheduler that is
// running them. The watchdog package relies on this: its revival task
// clears the whole task set and re-adds itself from inside a sweep.
//
// Panics in task actions are not recovered.
package scheduler
