// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// immortal-watchdog is the external side of a supervision ring. It is
// spawned by a program that called immortal.MakeImmortal and is not
// meant to be started by hand.
//
//	immortal-watchdog [--config path] <interval> <max-fails> <program> [args...]
//
// The watchdog heartbeats with its parent process using SIGUSR1. When
// the parent misses max-fails consecutive checks, the watchdog kills it
// with SIGKILL and execs program with args in its place, so the
// revived program keeps the watchdog's pid. The program then starts a
// new watchdog of its own.
//
// Flag parsing stops at the first positional argument: everything from
// the interval on is passed through untouched, including flags meant
// for the program.
//
// SIGTERM and SIGINT stop the watchdog without touching the program.
// The program's monitor notices the missing heartbeats and spawns a
// replacement.
package main
