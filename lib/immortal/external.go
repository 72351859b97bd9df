// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package immortal

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/bureau-foundation/immortal/lib/supervisor"
	"github.com/bureau-foundation/immortal/lib/watchdog"
)

// RunWatchdog runs the external side of the ring described by
// invocation. The target is the parent process, which spawned this
// one. It returns when ctx is cancelled; a successful revival replaces
// the process image and never returns.
func RunWatchdog(ctx context.Context, invocation WatchdogInvocation, opts ...Option) error {
	// The parent starts pinging as soon as this process exists; until
	// the receiver is installed a ping would kill it.
	heartbeat := &watchdog.Flag{}
	receiver := watchdog.Listen(supervisor.HeartbeatSignal, heartbeat)
	defer func() {
		signal.Ignore(supervisor.HeartbeatSignal)
		receiver.Close()
	}()

	if len(invocation.Program) == 0 || invocation.Interval <= 0 || invocation.MaxFails < 1 {
		return fmt.Errorf("%w: incomplete watchdog invocation", ErrInvalidArguments)
	}

	o, err := resolve(opts)
	if err != nil {
		return err
	}

	ring, err := ringID()
	if err != nil {
		return fmt.Errorf("exporting ring id: %w", err)
	}
	logger := o.logger.With("ring", ring)

	w, err := watchdog.New(watchdog.Config{
		Side:     watchdog.ExternalSide,
		Timing:   timing(invocation.Interval, o.config.Timing),
		MaxFails: invocation.MaxFails,
		Revival: watchdog.Replace{
			CommandLine: invocation.Program,
			RecordPath:  o.config.RecordPath,
			RingID:      ring,
		},
		Heartbeat:  heartbeat,
		Parent:     o.parentPID,
		Supervisor: o.supervisor,
		Clock:      o.clock,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	// An orphaned watchdog has been reparented to init, which must
	// never be signalled. With no target every check misses and the
	// program is revived after MaxFails checks.
	parent := o.parentPID()
	if parent == 1 {
		logger.Warn("protected program already gone, reviving after max fails")
		parent = 0
	}
	w.SetTarget(parent)

	if err := w.Arm(); err != nil {
		return err
	}
	defer w.Close()

	stop := context.AfterFunc(ctx, w.Stop)
	defer stop()

	logger.Info("watchdog started",
		"target_pid", parent,
		"interval", invocation.Interval,
		"max_fails", invocation.MaxFails,
		"program", invocation.Program[0],
	)
	if err := w.Run(); err != nil {
		return err
	}
	logger.Info("watchdog stopped", "reason", context.Cause(ctx))
	return nil
}
