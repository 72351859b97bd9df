// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package immortal

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/immortal/lib/config"
	"github.com/bureau-foundation/immortal/lib/watchdog"
)

// RingIDVariable carries the ring id to every process in the ring.
const RingIDVariable = "IMMORTAL_RING_ID"

// ringID returns the inherited ring id, generating and exporting a new
// one when this process starts the ring.
func ringID() (string, error) {
	if id := os.Getenv(RingIDVariable); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := os.Setenv(RingIDVariable, id); err != nil {
		return "", err
	}
	return id, nil
}

// timing derives the heartbeat task intervals from interval, then
// applies any per-task overrides from the config.
func timing(interval time.Duration, overrides config.TimingConfig) watchdog.Timing {
	t := watchdog.DefaultTiming(interval)
	for _, override := range []struct {
		value  time.Duration
		target *time.Duration
	}{
		{overrides.Send, &t.Send},
		{overrides.Check, &t.Check},
		{overrides.Revive, &t.Revive},
		{overrides.TerminatePoll, &t.TerminatePoll},
		{overrides.RevivePoll, &t.RevivePoll},
	} {
		if override.value > 0 {
			*override.target = override.value
		}
	}
	return t
}

// reportRevival logs and clears a revival record left by the external
// watchdog that became this process. Records for other rings, or for
// another pid, are left alone.
func reportRevival(cfg *config.Config, ring string, logger *slog.Logger) {
	if cfg.RecordPath == "" {
		return
	}

	record, ok, err := watchdog.CheckRecord(cfg.RecordPath, cfg.RecordMaxAge)
	if err != nil {
		logger.Warn("reading revival record", "path", cfg.RecordPath, "error", err)
		return
	}
	if !ok || record.RingID != ring || record.WatchdogPID != os.Getpid() {
		return
	}

	logger.Info("revived by external watchdog",
		"previous_pid", record.PreviousPID,
		"revived_at", record.Timestamp,
	)
	if err := watchdog.ClearRecord(cfg.RecordPath); err != nil {
		logger.Warn("clearing revival record", "path", cfg.RecordPath, "error", err)
	}
}
