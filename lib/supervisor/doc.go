// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor provides the process primitives the watchdog is
// built on: spawn a child, replace the current process image, send a
// signal, and wait for a child to exit.
//
// [Unix] implements [Supervisor] on golang.org/x/sys/unix. Spawned
// children are not waited on by anything in this package: the caller
// owns reaping, either blocking with [Supervisor.WaitFor] or polling
// with [Supervisor.Reap] before it spawns a replacement.
//
// [Supervisor.ReplaceSelf] is exec(2). On success it never returns and
// the process keeps its pid; that is how the external watchdog turns
// itself back into the program it was supervising.
package supervisor
