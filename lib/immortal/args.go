// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package immortal

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// WatchdogInvocation is the parsed command line of the external
// watchdog.
type WatchdogInvocation struct {
	// Binary is the watchdog's own argv[0].
	Binary string

	// Interval is the heartbeat interval.
	Interval time.Duration

	// MaxFails is the number of consecutive missed heartbeats that
	// trigger revival.
	MaxFails int

	// Program is the protected program's command line, exec'd on
	// revival.
	Program []string
}

// WatchdogArgs builds the external watchdog's argv:
// [binary, interval, maxFails, program...]. A whole number of seconds
// is written as a bare integer, anything else as a Go duration.
func WatchdogArgs(binary string, interval time.Duration, maxFails int, program []string) []string {
	formatted := interval.String()
	if interval%time.Second == 0 {
		formatted = strconv.FormatInt(int64(interval/time.Second), 10)
	}

	argv := make([]string, 0, 3+len(program))
	argv = append(argv, binary, formatted, strconv.Itoa(maxFails))
	return append(argv, program...)
}

// ParseWatchdogArgs parses an argv built by WatchdogArgs. Errors wrap
// ErrInvalidArguments.
func ParseWatchdogArgs(argv []string) (WatchdogInvocation, error) {
	if len(argv) < 4 {
		return WatchdogInvocation{}, fmt.Errorf("%w: want <interval> <max-fails> <program> [args...], got %d arguments",
			ErrInvalidArguments, max(len(argv)-1, 0))
	}

	interval, err := parseInterval(argv[1])
	if err != nil {
		return WatchdogInvocation{}, err
	}

	maxFails, err := strconv.Atoi(argv[2])
	if err != nil || maxFails < 1 {
		return WatchdogInvocation{}, fmt.Errorf("%w: max fails %q must be a positive integer", ErrInvalidArguments, argv[2])
	}

	return WatchdogInvocation{
		Binary:   argv[0],
		Interval: interval,
		MaxFails: maxFails,
		Program:  slices.Clone(argv[3:]),
	}, nil
}

// parseInterval accepts integer seconds ("6") or a Go duration
// ("1500ms").
func parseInterval(value string) (time.Duration, error) {
	var interval time.Duration
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		interval = time.Duration(seconds) * time.Second
	} else if interval, err = time.ParseDuration(value); err != nil {
		return 0, fmt.Errorf("%w: interval %q is neither seconds nor a duration", ErrInvalidArguments, value)
	}

	if interval <= 0 {
		return 0, fmt.Errorf("%w: interval %q must be positive", ErrInvalidArguments, value)
	}
	return interval, nil
}
