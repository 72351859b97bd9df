// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package uid mints identifiers for scheduled tasks.
//
// An [ID] combines a per-process counter, the creation time, the
// creating process's pid, and the host's local network address.
// Uniqueness is best-effort: two IDs collide only if the counter wraps
// within the same nanosecond on the same host and pid. IDs are
// comparable with ==; [Invalid] is the zero value and is never
// returned by [New], whose counter starts at 1.
package uid

import (
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ID identifies one scheduled task.
type ID struct {
	Counter   uint64
	Timestamp int64 // unix nanoseconds
	PID       int
	Address   string
}

var (
	counter atomic.Uint64

	addressOnce sync.Once
	address     string
)

// New returns a fresh identifier.
func New() ID {
	addressOnce.Do(func() { address = localAddress() })
	return ID{
		Counter:   counter.Add(1),
		Timestamp: time.Now().UnixNano(),
		PID:       os.Getpid(),
		Address:   address,
	}
}

// Invalid returns the sentinel that denotes "no identifier".
func Invalid() ID { return ID{} }

// IsSame reports whether a and b are the same identifier.
func IsSame(a, b ID) bool { return a == b }

// IsValid reports whether id was minted by New.
func (id ID) IsValid() bool { return id != ID{} }

func (id ID) String() string {
	if !id.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d-%d-%d@%s", id.Counter, id.Timestamp, id.PID, id.Address)
}

// localAddress returns the first non-loopback unicast address of this
// host, or the IPv4 loopback address when there is none.
func localAddress() string {
	addresses, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, candidate := range addresses {
		network, ok := candidate.(*net.IPNet)
		if !ok || network.IP.IsLoopback() || !network.IP.IsGlobalUnicast() {
			continue
		}
		return network.IP.String()
	}
	return "127.0.0.1"
}
