// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisortest provides an in-memory supervisor.Supervisor
// that records every process operation instead of performing it.
package supervisortest

import (
	"errors"
	"slices"
	"sync"
	"syscall"

	"github.com/bureau-foundation/immortal/lib/supervisor"
)

// ErrExecDisabled is what ReplaceSelf returns when OnReplace is nil.
var ErrExecDisabled = errors.New("supervisortest: exec disabled")

// Sent is one recorded Signal call.
type Sent struct {
	PID    int
	Signal syscall.Signal
}

// Fake implements supervisor.Supervisor. Configure the exported fields
// before handing the Fake to the code under test; read results through
// the accessor methods, which are safe while that code runs.
type Fake struct {
	// NextPID is incremented and returned by each successful Spawn.
	NextPID int

	// SpawnErrors are returned, in order, by the first Spawn calls.
	SpawnErrors []error

	// ReapResults are returned, in order, by the first Reap calls.
	// Later calls report true.
	ReapResults []bool

	// OnReplace, when set, decides ReplaceSelf's result.
	OnReplace func(commandLine []string) error

	mu       sync.Mutex
	spawned  [][]string
	signals  []Sent
	waited   []int
	reaped   []int
	replaced [][]string
}

var _ supervisor.Supervisor = (*Fake)(nil)

// Spawn implements supervisor.Supervisor.
func (f *Fake) Spawn(commandLine []string, environment []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.SpawnErrors) > 0 {
		err := f.SpawnErrors[0]
		f.SpawnErrors = f.SpawnErrors[1:]
		return 0, err
	}
	f.spawned = append(f.spawned, slices.Clone(commandLine))
	f.NextPID++
	return f.NextPID, nil
}

// ReplaceSelf implements supervisor.Supervisor.
func (f *Fake) ReplaceSelf(commandLine []string) error {
	f.mu.Lock()
	f.replaced = append(f.replaced, slices.Clone(commandLine))
	onReplace := f.OnReplace
	f.mu.Unlock()

	if onReplace != nil {
		return onReplace(commandLine)
	}
	return ErrExecDisabled
}

// Signal implements supervisor.Supervisor. Non-positive pids fail with
// supervisor.ErrInvalidPID, as they do for the real implementation.
func (f *Fake) Signal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return supervisor.ErrInvalidPID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, Sent{PID: pid, Signal: sig})
	return nil
}

// WaitFor implements supervisor.Supervisor. It never blocks.
func (f *Fake) WaitFor(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited = append(f.waited, pid)
	return nil
}

// Reap implements supervisor.Supervisor.
func (f *Fake) Reap(pid int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reaped = append(f.reaped, pid)
	if len(f.ReapResults) > 0 {
		result := f.ReapResults[0]
		f.ReapResults = f.ReapResults[1:]
		return result, nil
	}
	return true, nil
}

// Spawned returns the command line of every successful Spawn.
func (f *Fake) Spawned() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.spawned)
}

// Signals returns every Signal call with a positive pid.
func (f *Fake) Signals() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.signals)
}

// Kills returns the pids sent supervisor.TerminateSignal.
func (f *Fake) Kills() []int {
	return f.sentTo(supervisor.TerminateSignal)
}

// Pings returns the pids sent supervisor.HeartbeatSignal.
func (f *Fake) Pings() []int {
	return f.sentTo(supervisor.HeartbeatSignal)
}

func (f *Fake) sentTo(sig syscall.Signal) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pids []int
	for _, sent := range f.signals {
		if sent.Signal == sig {
			pids = append(pids, sent.PID)
		}
	}
	return pids
}

// Waited returns the pids passed to WaitFor.
func (f *Fake) Waited() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.waited)
}

// Reaped returns the pids passed to Reap.
func (f *Fake) Reaped() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reaped)
}

// Replaced returns the command line of every ReplaceSelf call.
func (f *Fake) Replaced() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.replaced)
}
