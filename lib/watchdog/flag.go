// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Flag is a one-bit mailbox between a signal receiver (or an external
// caller) and the task that consumes it. The zero value is unset.
type Flag struct {
	set atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.set.Store(true) }

// Take reports whether the flag was set and clears it.
func (f *Flag) Take() bool { return f.set.Swap(false) }

// IsSet reports whether the flag is set without clearing it.
func (f *Flag) IsSet() bool { return f.set.Load() }

// Clear lowers the flag.
func (f *Flag) Clear() { f.set.Store(false) }

// Receiver forwards deliveries of one signal into a Flag.
type Receiver struct {
	signals   chan os.Signal
	done      chan struct{}
	closeOnce sync.Once
}

// Listen starts forwarding sig into flag. Registration happens before
// Listen returns, so a signal sent afterward is never handled by the
// default disposition. Call Close to deregister.
func Listen(sig os.Signal, flag *Flag) *Receiver {
	receiver := &Receiver{
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(receiver.signals, sig)

	go func() {
		for {
			select {
			case <-receiver.signals:
				flag.Set()
			case <-receiver.done:
				return
			}
		}
	}()
	return receiver
}

// Close deregisters the signal. Deliveries after Close are handled by
// the default disposition. Idempotent.
func (r *Receiver) Close() {
	r.closeOnce.Do(func() {
		signal.Stop(r.signals)
		close(r.done)
	})
}
