// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/immortal/lib/config"
	"github.com/bureau-foundation/immortal/lib/immortal"
	"github.com/bureau-foundation/immortal/lib/logging"
	"github.com/bureau-foundation/immortal/lib/process"
	"github.com/bureau-foundation/immortal/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		interval time.Duration
		maxFails int
	)

	// Handle --version before flag parsing to match the watchdog.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("immortal-demo")
		return nil
	}

	flagSet := pflag.NewFlagSet("immortal-demo", pflag.ContinueOnError)
	flagSet.DurationVar(&interval, "interval", 6*time.Second, "heartbeat interval")
	flagSet.IntVar(&maxFails, "max-fails", 4, "missed heartbeats before revival")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	monitor, err := immortal.MakeImmortal(os.Args, interval, maxFails,
		immortal.WithConfig(cfg),
		immortal.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	logger = logger.With("ring", monitor.RingID(), "pid", os.Getpid())
	logger.Info("demo running", "interval", interval, "max_fails", maxFails)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("still alive", "watchdog_pid", monitor.WatchdogPID())
		case <-ctx.Done():
			logger.Info("shutting down, ending supervision")
			immortal.DoNotResuscitate()
			<-monitor.Done()
			return monitor.Err()
		case <-monitor.Done():
			return monitor.Err()
		}
	}
}
