// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package immortal wires two watchdogs into a mutual-supervision ring.
//
// A program protects itself by calling [MakeImmortal] early in main.
// That starts a monitor goroutine which spawns the external watchdog
// binary (cmd/immortal-watchdog) and heartbeats with it. The external
// watchdog runs [RunWatchdog]: it heartbeats with its parent, and once
// the parent misses too many heartbeats it kills the parent and
// replaces its own process image with the protected program. The
// revived program calls MakeImmortal again and spawns a new watchdog.
// Symmetrically, the monitor kills and respawns an unresponsive
// watchdog.
//
//	program ── SIGUSR1 ──▶ immortal-watchdog
//	   ▲                          │
//	   └──────── SIGUSR1 ─────────┘
//
// The watchdog command line is positional:
//
//	immortal-watchdog <interval> <max-fails> <program> [args...]
//
// [WatchdogArgs] builds it and [ParseWatchdogArgs] reads it back.
//
// [DoNotResuscitate] ends supervision: the monitor kills and collects
// the external watchdog and stops, so the program can exit without
// being brought back.
//
// Both sides log with a "ring" attribute taken from IMMORTAL_RING_ID,
// which the first MakeImmortal in a ring generates and every spawn and
// exec inherits.
package immortal
