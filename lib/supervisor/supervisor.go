// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

// Signals that make up the wire protocol between the two sides.
const (
	// HeartbeatSignal proves liveness. Each side sends it to the other
	// on every send-ping tick.
	HeartbeatSignal = unix.SIGUSR1

	// TerminateSignal is the hard kill used when a target has missed
	// too many heartbeats or supervision is being shut down.
	TerminateSignal = unix.SIGKILL
)

var (
	// ErrInvalidPID is returned for pids that do not name a single
	// process. kill(2) treats 0 and negative pids as process groups.
	ErrInvalidPID = errors.New("supervisor: pid must be positive")

	// ErrNoCommand is returned for an empty command line.
	ErrNoCommand = errors.New("supervisor: empty command line")
)

// Supervisor is the set of process operations the watchdog needs.
type Supervisor interface {
	// Spawn starts commandLine as a new child process with the given
	// environment and returns its pid.
	Spawn(commandLine []string, environment []string) (int, error)

	// ReplaceSelf replaces the current process image with commandLine,
	// keeping the pid and environment. Returns only on failure.
	ReplaceSelf(commandLine []string) error

	// Signal sends sig to pid.
	Signal(pid int, sig syscall.Signal) error

	// WaitFor blocks until the child pid exits.
	WaitFor(pid int) error

	// Reap collects pid if it has exited, without blocking. Returns
	// true when pid has been collected or is not a child of this
	// process.
	Reap(pid int) (bool, error)
}
