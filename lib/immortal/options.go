// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package immortal

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/immortal/lib/clock"
	"github.com/bureau-foundation/immortal/lib/config"
	"github.com/bureau-foundation/immortal/lib/logging"
	"github.com/bureau-foundation/immortal/lib/supervisor"
)

// Option configures MakeImmortal and RunWatchdog.
type Option func(*options)

type options struct {
	config     *config.Config
	logger     *slog.Logger
	supervisor supervisor.Supervisor
	clock      clock.Clock

	// parentPID reports the external watchdog's target.
	parentPID func() int
}

// WithConfig uses cfg instead of loading IMMORTAL_CONFIG.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithLogger uses logger instead of building one from the config.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSupervisor replaces the process operations, typically with
// supervisortest.Fake.
func WithSupervisor(processes supervisor.Supervisor) Option {
	return func(o *options) { o.supervisor = processes }
}

// WithClock replaces the scheduler clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// resolve applies opts and fills in everything they left unset.
func resolve(opts []Option) (*options, error) {
	o := &options{parentPID: unix.Getppid}
	for _, opt := range opts {
		opt(o)
	}

	if o.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		o.config = cfg
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if o.logger == nil {
		logger, err := logging.New(o.config.Log.Level, o.config.Log.Format)
		if err != nil {
			return nil, err
		}
		o.logger = logger
	}
	if o.supervisor == nil {
		o.supervisor = supervisor.NewUnix(o.logger)
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}
	return o, nil
}
