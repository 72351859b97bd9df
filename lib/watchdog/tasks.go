// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"github.com/bureau-foundation/immortal/lib/supervisor"
)

// sendPing signals the target with the heartbeat signal. A failed
// delivery is logged and otherwise ignored; a dead target shows up as
// missed heartbeats in check-pong.
type sendPing struct{ w *Watchdog }

func (t sendPing) Run() bool {
	target := t.w.liveTarget()
	if target <= 0 {
		return true
	}
	if err := t.w.supervisor.Signal(target, supervisor.HeartbeatSignal); err != nil {
		t.w.logger.Warn("heartbeat send failed", "target_pid", target, "error", err)
	}
	return true
}

// checkPong consumes the heartbeat flag. The fail count never exceeds
// MaxFails; revive-if-exhausted acts on equality.
type checkPong struct{ w *Watchdog }

func (t checkPong) Run() bool {
	w := t.w
	if w.heartbeat.Take() {
		if previous := w.fails.Swap(0); previous > 0 {
			w.logger.Info("heartbeat recovered", "target_pid", w.Target(), "missed", previous)
		}
		return true
	}

	fails := w.fails.Load()
	if fails < w.maxFails {
		fails = w.fails.Add(1)
	}
	w.logger.Warn("heartbeat missed",
		"target_pid", w.Target(),
		"fails", fails,
		"max_fails", w.maxFails,
	)
	return true
}

// reviveIfExhausted kills the target once the fail count reaches
// MaxFails and swaps the whole heartbeat task set for the revival
// task. Equality rather than >= keeps it from firing twice for one
// exhaustion; the count only reaches MaxFails again after a fresh Arm.
type reviveIfExhausted struct{ w *Watchdog }

func (t reviveIfExhausted) Run() bool {
	w := t.w
	if w.fails.Load() != w.maxFails {
		return true
	}

	target := w.liveTarget()
	w.setState(Exhausted)
	w.logger.Error("target unresponsive, reviving",
		"target_pid", target,
		"fails", w.maxFails,
	)

	if target > 0 {
		if err := w.supervisor.Signal(target, supervisor.TerminateSignal); err != nil {
			w.logger.Warn("terminating unresponsive target", "target_pid", target, "error", err)
		}
	}

	w.scheduler.Clear()
	if err := w.ScheduleRevival(); err != nil {
		w.logger.Error("revival not scheduled", "error", err)
	}
	return true
}

// terminateOnRequest shuts supervision down when the do-not-resuscitate
// flag is raised. It removes itself along with every other task, so
// nothing due later in the same sweep touches the collected target.
type terminateOnRequest struct{ w *Watchdog }

func (t terminateOnRequest) Run() bool {
	if !t.w.dnr.IsSet() {
		return true
	}
	t.w.shutdown()
	return false
}

// shutdown kills and collects the current target, empties the task
// set and stops the scheduler. The do-not-resuscitate flag is consumed.
func (w *Watchdog) shutdown() {
	target := w.Target()
	w.logger.Info("do-not-resuscitate requested, terminating target", "target_pid", target)

	if target > 0 {
		if err := w.supervisor.Signal(target, supervisor.TerminateSignal); err != nil {
			w.logger.Warn("terminating target", "target_pid", target, "error", err)
		}
		if err := w.supervisor.WaitFor(target); err != nil {
			w.logger.Warn("waiting for target", "target_pid", target, "error", err)
		}
	}

	w.scheduler.Clear()
	w.SetTarget(0)
	w.scheduler.Stop()
	w.dnr.Clear()
	w.setState(Stopped)
}
