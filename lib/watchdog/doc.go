// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog implements one side of a mutual-supervision ring.
//
// A [Watchdog] binds a scheduler to a single supervised target pid.
// Its heartbeat task set pings the target, checks whether the target
// pinged back since the last check, and revives the target once
// MaxFails consecutive checks have come up empty:
//
//   - send-ping signals the target with supervisor.HeartbeatSignal.
//   - check-pong consumes the heartbeat [Flag]; set resets the fail
//     count, unset increments it.
//   - revive-if-exhausted fires when the fail count equals MaxFails:
//     it kills the target, clears the task set, and schedules only the
//     revival task.
//   - terminate-on-request (monitor side) fires when the
//     do-not-resuscitate flag is set: it kills the target, waits for
//     it, and stops the scheduler.
//
// What "revive" means depends on the side, selected by the [Revival]
// in [Config]: [Spawn] starts a fresh external watchdog process and
// re-arms the heartbeat set against it; [Replace] execs the protected
// program in place of the current process.
//
// Side states move IDLE → RUNNING → EXHAUSTED → RESPAWNING → RUNNING,
// with RUNNING → STOPPED only on a do-not-resuscitate request.
//
// Heartbeats arrive as signals. [Listen] registers a signal with
// os/signal and forwards each delivery into a [Flag] with a single
// atomic store.
//
// The package also maintains the revival record, a small CBOR file the
// replacing side writes just before exec so the revived program can
// log what happened to its predecessor. The protocol never reads it.
package watchdog
