// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"errors"
	"os"
	"slices"

	"github.com/bureau-foundation/immortal/lib/scheduler"
)

// Revival selects the revive task a Watchdog installs once its target
// is exhausted. The set of revivals is closed: Spawn for the monitor
// side and Replace for the external side.
type Revival interface {
	validate() error
	task(w *Watchdog) scheduler.Task
}

// Spawn revives the target by starting a new process. The monitor side
// uses it to start (and restart) the external watchdog.
type Spawn struct {
	CommandLine []string

	// Environment, when nil, is inherited from the current process.
	Environment []string
}

func (s Spawn) validate() error {
	if len(s.CommandLine) == 0 {
		return errors.New("spawn revival needs a command line")
	}
	return nil
}

func (s Spawn) task(w *Watchdog) scheduler.Task {
	return spawnTarget{
		w:           w,
		commandLine: slices.Clone(s.CommandLine),
		environment: slices.Clone(s.Environment),
	}
}

// Replace revives the target by replacing the current process image
// with the protected program. The external side uses it; on success
// the watchdog process becomes the program, which then starts a fresh
// watchdog of its own.
type Replace struct {
	CommandLine []string

	// RecordPath, when set, receives a Record just before the image is
	// replaced.
	RecordPath string

	// RingID is copied into the record.
	RingID string
}

func (r Replace) validate() error {
	if len(r.CommandLine) == 0 {
		return errors.New("replace revival needs a command line")
	}
	return nil
}

func (r Replace) task(w *Watchdog) scheduler.Task {
	return replaceSelf{
		w:           w,
		commandLine: slices.Clone(r.CommandLine),
		recordPath:  r.RecordPath,
		ringID:      r.RingID,
	}
}

// spawnTarget collects the previous target, spawns a replacement, and
// re-arms the heartbeat task set against it. It keeps polling until
// the previous target is reaped so no zombie is left behind, and
// retries a failed spawn on the next poll. A do-not-resuscitate
// request seen between attempts ends supervision instead.
type spawnTarget struct {
	w           *Watchdog
	commandLine []string
	environment []string
}

func (t spawnTarget) Run() bool {
	w := t.w
	if w.dnr != nil && w.dnr.IsSet() {
		w.shutdown()
		return false
	}
	if previous := w.Target(); previous > 0 {
		reaped, err := w.supervisor.Reap(previous)
		if err != nil {
			w.logger.Warn("reaping previous target", "target_pid", previous, "error", err)
			return true
		}
		if !reaped {
			return true
		}
		w.SetTarget(0)
	}

	pid, err := w.supervisor.Spawn(t.commandLine, t.environment)
	if err != nil {
		w.logger.Error("spawning target failed, will retry",
			"command", t.commandLine[0],
			"error", err,
		)
		return true
	}

	w.SetTarget(pid)
	w.logger.Info("target spawned", "target_pid", pid, "command", t.commandLine[0])
	if err := w.Arm(); err != nil {
		w.logger.Error("arming heartbeat after spawn", "target_pid", pid, "error", err)
	}
	return false
}

// replaceSelf replaces this process image with the protected program.
// Success never returns. A failure clears any record written for the
// attempt and retries on the next poll.
type replaceSelf struct {
	w           *Watchdog
	commandLine []string
	recordPath  string
	ringID      string
}

func (t replaceSelf) Run() bool {
	w := t.w
	if t.recordPath != "" {
		record := Record{
			RingID:      t.ringID,
			WatchdogPID: os.Getpid(),
			PreviousPID: w.Target(),
			CommandLine: t.commandLine,
			Timestamp:   w.clock.Now(),
		}
		if err := WriteRecord(t.recordPath, record); err != nil {
			w.logger.Warn("writing revival record", "path", t.recordPath, "error", err)
		}
	}

	w.logger.Info("replacing watchdog with protected program",
		"previous_pid", w.Target(),
		"command", t.commandLine[0],
	)
	err := w.supervisor.ReplaceSelf(t.commandLine)

	w.logger.Error("replacing process image failed, will retry",
		"command", t.commandLine[0],
		"error", err,
	)
	if t.recordPath != "" {
		if err := ClearRecord(t.recordPath); err != nil {
			w.logger.Warn("clearing revival record", "path", t.recordPath, "error", err)
		}
	}
	return true
}
