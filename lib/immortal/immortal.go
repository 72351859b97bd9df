// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package immortal

import (
	"errors"
	"fmt"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/immortal/lib/supervisor"
	"github.com/bureau-foundation/immortal/lib/watchdog"
)

var (
	// ErrAlreadyImmortal is returned by MakeImmortal while a monitor
	// from an earlier call is still running.
	ErrAlreadyImmortal = errors.New("immortal: monitor already running")

	// ErrInvalidArguments reports an unusable program command line,
	// interval, or fail threshold.
	ErrInvalidArguments = errors.New("immortal: invalid arguments")
)

var (
	// doNotResuscitate is raised by DoNotResuscitate and consumed by the
	// monitor's terminate-on-request task.
	doNotResuscitate watchdog.Flag

	// active guards against two monitors in one process.
	active atomic.Bool
)

// DoNotResuscitate asks the running monitor to end supervision: the
// external watchdog is killed and collected, and the monitor stops
// within one terminate poll. Calling it with no monitor running is
// harmless.
func DoNotResuscitate() {
	doNotResuscitate.Set()
}

// Monitor is the in-process side of a ring.
type Monitor struct {
	watchdog *watchdog.Watchdog
	ring     string
	done     chan struct{}
	err      error
}

// Done is closed once the monitor has stopped.
func (m *Monitor) Done() <-chan struct{} { return m.done }

// Err returns the error the monitor stopped with. Valid after Done is
// closed.
func (m *Monitor) Err() error { return m.err }

// RingID returns the id shared by every process in this ring.
func (m *Monitor) RingID() string { return m.ring }

// WatchdogPID returns the pid of the current external watchdog, or 0
// while none is running.
func (m *Monitor) WatchdogPID() int { return m.watchdog.Target() }

// MakeImmortal starts supervising the calling process and returns
// immediately. arguments is the program's own command line (normally
// os.Args), used by the external watchdog to revive it. interval is
// the heartbeat interval and maxFails the number of consecutive missed
// heartbeats after which either side revives the other.
func MakeImmortal(arguments []string, interval time.Duration, maxFails int, opts ...Option) (*Monitor, error) {
	if err := validate(arguments, interval, maxFails); err != nil {
		return nil, err
	}
	if !active.CompareAndSwap(false, true) {
		return nil, ErrAlreadyImmortal
	}

	monitor, err := startMonitor(arguments, interval, maxFails, opts)
	if err != nil {
		active.Store(false)
		return nil, err
	}
	return monitor, nil
}

func validate(arguments []string, interval time.Duration, maxFails int) error {
	var errs []error
	if len(arguments) == 0 || arguments[0] == "" {
		errs = append(errs, errors.New("program command line is empty"))
	}
	if interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", interval))
	}
	if maxFails < 1 {
		errs = append(errs, fmt.Errorf("max fails must be at least 1, got %d", maxFails))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	return nil
}

func startMonitor(arguments []string, interval time.Duration, maxFails int, opts []Option) (*Monitor, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	ring, err := ringID()
	if err != nil {
		return nil, fmt.Errorf("exporting ring id: %w", err)
	}
	logger := o.logger.With("ring", ring)
	reportRevival(o.config, ring, logger)

	// A request left over from a previous ring must not stop this one.
	doNotResuscitate.Clear()

	heartbeat := &watchdog.Flag{}
	w, err := watchdog.New(watchdog.Config{
		Side:     watchdog.MonitorSide,
		Timing:   timing(interval, o.config.Timing),
		MaxFails: maxFails,
		Revival: watchdog.Spawn{
			CommandLine: WatchdogArgs(o.config.WatchdogBinary, interval, maxFails, arguments),
		},
		Heartbeat:        heartbeat,
		DoNotResuscitate: &doNotResuscitate,
		Supervisor:       o.supervisor,
		Clock:            o.clock,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}
	if err := w.ScheduleRevival(); err != nil {
		return nil, err
	}

	monitor := &Monitor{
		watchdog: w,
		ring:     ring,
		done:     make(chan struct{}),
	}
	receiver := watchdog.Listen(supervisor.HeartbeatSignal, heartbeat)

	logger.Info("supervision started",
		"interval", interval,
		"max_fails", maxFails,
		"watchdog_binary", o.config.WatchdogBinary,
	)

	go func() {
		defer close(monitor.done)
		defer active.Store(false)

		monitor.err = w.Run()

		// Pings still in flight from the killed watchdog must not hit
		// the default disposition, which terminates the process.
		signal.Ignore(supervisor.HeartbeatSignal)
		receiver.Close()

		if err := w.Close(); err != nil && monitor.err == nil {
			monitor.err = err
		}
		logger.Info("supervision stopped")
	}()
	return monitor, nil
}
