// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// immortal-demo is a long-running program protected by a supervision
// ring. It logs a line on every heartbeat interval until it receives
// SIGTERM or SIGINT, then ends supervision with
// immortal.DoNotResuscitate and exits.
//
// Killing it with SIGKILL, or stopping it with SIGSTOP, shows the ring
// at work: after max-fails missed heartbeats the external watchdog
// kills what is left and execs immortal-demo again with the same
// arguments.
//
//	immortal-demo [--interval 6s] [--max-fails 4]
//
// immortal-watchdog must be on PATH, or named by watchdog_binary in
// the file IMMORTAL_CONFIG points at.
package main
