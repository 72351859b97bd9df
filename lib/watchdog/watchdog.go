// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/immortal/lib/clock"
	"github.com/bureau-foundation/immortal/lib/scheduler"
	"github.com/bureau-foundation/immortal/lib/supervisor"
	"github.com/bureau-foundation/immortal/lib/uid"
)

// Side names which half of the ring a Watchdog runs.
type Side string

const (
	// MonitorSide runs inside the protected program and supervises
	// the external watchdog process.
	MonitorSide Side = "monitor"

	// ExternalSide runs in the external watchdog process and
	// supervises the protected program.
	ExternalSide Side = "external"
)

// State is the position of a Watchdog in its supervision cycle.
type State int32

const (
	Idle State = iota
	Running
	Exhausted
	Respawning
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Respawning:
		return "respawning"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Timing holds the interval of each heartbeat task.
type Timing struct {
	// Send is how often send-ping signals the target.
	Send time.Duration

	// Check is how often check-pong consumes the heartbeat flag. A
	// missed heartbeat is detected at most one Check after it was due.
	Check time.Duration

	// Revive is how often revive-if-exhausted compares the fail count
	// against MaxFails.
	Revive time.Duration

	// TerminatePoll is how often terminate-on-request looks at the
	// do-not-resuscitate flag.
	TerminatePoll time.Duration

	// RevivePoll is the interval of the revival task while it waits
	// for the old target to be reaped or retries a failed spawn/exec.
	RevivePoll time.Duration
}

// DefaultTiming derives a Timing from the heartbeat interval. The
// target is pinged twice per check so one late ping does not count as
// a miss.
func DefaultTiming(interval time.Duration) Timing {
	poll := min(interval, time.Second)
	return Timing{
		Send:          max(interval/2, time.Millisecond),
		Check:         interval,
		Revive:        interval,
		TerminatePoll: poll,
		RevivePoll:    poll,
	}
}

// Validate reports every non-positive interval.
func (t Timing) Validate() error {
	var errs []error
	for _, field := range []struct {
		name  string
		value time.Duration
	}{
		{"send", t.Send},
		{"check", t.Check},
		{"revive", t.Revive},
		{"terminate_poll", t.TerminatePoll},
		{"revive_poll", t.RevivePoll},
	} {
		if field.value <= 0 {
			errs = append(errs, fmt.Errorf("timing.%s must be positive, got %v", field.name, field.value))
		}
	}
	return errors.Join(errs...)
}

// Config configures a Watchdog.
type Config struct {
	Side     Side
	Timing   Timing
	MaxFails int

	// Revival selects what happens once the target is exhausted.
	Revival Revival

	// Heartbeat is raised when the target pings this side. Required.
	Heartbeat *Flag

	// DoNotResuscitate, when non-nil, enables terminate-on-request in
	// the heartbeat task set.
	DoNotResuscitate *Flag

	// Parent, when set, reports this process's current parent pid. The
	// external side supervises its parent; once Parent no longer
	// matches the target the target is treated as gone and is never
	// signalled again.
	Parent func() int

	// Supervisor defaults to supervisor.NewUnix.
	Supervisor supervisor.Supervisor

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watchdog is one side of the ring: a scheduler, a target pid, and
// the fail count that decides when the target is revived. The
// Watchdog owns its scheduler; the scheduled tasks hold a plain
// pointer back to it.
type Watchdog struct {
	side       Side
	timing     Timing
	maxFails   int32
	heartbeat  *Flag
	dnr        *Flag
	parent     func() int
	supervisor supervisor.Supervisor
	logger     *slog.Logger
	clock      clock.Clock
	scheduler  *scheduler.Scheduler
	revive     scheduler.Task

	target atomic.Int64
	fails  atomic.Int32
	state  atomic.Int32
}

// New validates config and returns an idle Watchdog with an empty task
// set and no target.
func New(config Config) (*Watchdog, error) {
	var errs []error
	if config.Side != MonitorSide && config.Side != ExternalSide {
		errs = append(errs, fmt.Errorf("invalid side %q", config.Side))
	}
	if err := config.Timing.Validate(); err != nil {
		errs = append(errs, err)
	}
	if config.MaxFails < 1 {
		errs = append(errs, fmt.Errorf("max fails must be at least 1, got %d", config.MaxFails))
	}
	if config.Revival == nil {
		errs = append(errs, errors.New("revival is required"))
	} else if err := config.Revival.validate(); err != nil {
		errs = append(errs, err)
	}
	if config.Heartbeat == nil {
		errs = append(errs, errors.New("heartbeat flag is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("configuring %s watchdog: %w", config.Side, err)
	}

	processClock := config.Clock
	if processClock == nil {
		processClock = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("side", string(config.Side))

	processes := config.Supervisor
	if processes == nil {
		processes = supervisor.NewUnix(logger)
	}

	w := &Watchdog{
		side:       config.Side,
		timing:     config.Timing,
		maxFails:   int32(config.MaxFails),
		heartbeat:  config.Heartbeat,
		dnr:        config.DoNotResuscitate,
		parent:     config.Parent,
		supervisor: processes,
		logger:     logger,
		clock:      processClock,
		scheduler: scheduler.New(scheduler.Config{
			Clock:  processClock,
			Logger: logger,
		}),
	}
	w.revive = config.Revival.task(w)
	return w, nil
}

type armedTask struct {
	task     scheduler.Task
	interval time.Duration
}

// Arm resets the fail count and installs the heartbeat task set
// against the current target: terminate-on-request (when a
// do-not-resuscitate flag is configured), send-ping, check-pong, and
// revive-if-exhausted, in that order.
func (w *Watchdog) Arm() error {
	w.fails.Store(0)
	w.heartbeat.Clear()

	var tasks []armedTask
	if w.dnr != nil {
		tasks = append(tasks, armedTask{terminateOnRequest{w}, w.timing.TerminatePoll})
	}
	tasks = append(tasks,
		armedTask{sendPing{w}, w.timing.Send},
		armedTask{checkPong{w}, w.timing.Check},
		armedTask{reviveIfExhausted{w}, w.timing.Revive},
	)

	for _, scheduled := range tasks {
		if _, err := w.scheduler.AddTask(scheduled.task, scheduled.interval); err != nil {
			return fmt.Errorf("arming %T: %w", scheduled.task, err)
		}
	}

	w.setState(Running)
	w.logger.Info("heartbeat armed",
		"target_pid", w.Target(),
		"max_fails", w.maxFails,
		"check_interval", w.timing.Check,
	)
	return nil
}

// Schedule adds task to the Watchdog's scheduler.
func (w *Watchdog) Schedule(task scheduler.Task, interval time.Duration) (uid.ID, error) {
	return w.scheduler.AddTask(task, interval)
}

// ScheduleRevival adds the revival task at the revive poll interval.
// The monitor side calls this once at startup to spawn its first
// target.
func (w *Watchdog) ScheduleRevival() error {
	if _, err := w.scheduler.AddTask(w.revive, w.timing.RevivePoll); err != nil {
		return fmt.Errorf("scheduling revival: %w", err)
	}
	w.setState(Respawning)
	return nil
}

// Run drives the scheduler until Stop is called or a
// do-not-resuscitate request is honored.
func (w *Watchdog) Run() error { return w.scheduler.Run() }

// Stop asks Run to return after the current sweep.
func (w *Watchdog) Stop() { w.scheduler.Stop() }

// Close releases every scheduled task. The Watchdog must not be
// running.
func (w *Watchdog) Close() error { return w.scheduler.Close() }

// Scheduler returns the scheduler this Watchdog owns.
func (w *Watchdog) Scheduler() *scheduler.Scheduler { return w.scheduler }

// Side returns which half of the ring this Watchdog runs.
func (w *Watchdog) Side() Side { return w.side }

// Target returns the supervised pid, or 0 when there is none yet.
func (w *Watchdog) Target() int { return int(w.target.Load()) }

// SetTarget points the Watchdog at pid.
func (w *Watchdog) SetTarget(pid int) { w.target.Store(int64(pid)) }

// liveTarget returns the target, or 0 once the target has exited and
// this process was reparented away from it.
func (w *Watchdog) liveTarget() int {
	target := w.Target()
	if target <= 0 || w.parent == nil {
		return target
	}
	if parent := w.parent(); parent != target {
		w.logger.Warn("target gone, no longer signalling it",
			"target_pid", target,
			"parent_pid", parent,
		)
		w.SetTarget(0)
		return 0
	}
	return target
}

// Fails returns the number of consecutive checks without a heartbeat.
func (w *Watchdog) Fails() int { return int(w.fails.Load()) }

// MaxFails returns the revival threshold.
func (w *Watchdog) MaxFails() int { return int(w.maxFails) }

// State returns the current position in the supervision cycle.
func (w *Watchdog) State() State { return State(w.state.Load()) }

func (w *Watchdog) setState(state State) {
	previous := State(w.state.Swap(int32(state)))
	if previous != state {
		w.logger.Debug("watchdog state", "from", previous.String(), "to", state.String())
	}
}
