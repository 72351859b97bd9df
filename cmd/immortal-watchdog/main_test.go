// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/bureau-foundation/immortal/lib/immortal"
)

func TestParseArguments(t *testing.T) {
	argv := immortal.WatchdogArgs("/usr/bin/immortal-watchdog", 6*time.Second, 4,
		[]string{"/usr/bin/program", "--config", "/etc/program.yaml", "-v"})

	parsed, err := parseArguments(argv)
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}
	if parsed.configPath != "" {
		t.Errorf("configPath = %q, program flags leaked into the watchdog", parsed.configPath)
	}
	if parsed.invocation.Interval != 6*time.Second || parsed.invocation.MaxFails != 4 {
		t.Errorf("invocation = %+v", parsed.invocation)
	}
	want := []string{"/usr/bin/program", "--config", "/etc/program.yaml", "-v"}
	if !slices.Equal(parsed.invocation.Program, want) {
		t.Errorf("Program = %v, want %v", parsed.invocation.Program, want)
	}
}

func TestParseArgumentsWithConfigFlag(t *testing.T) {
	parsed, err := parseArguments([]string{"immortal-watchdog", "--config", "/etc/immortal.yaml", "2s", "3", "/bin/sleep", "60"})
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}
	if parsed.configPath != "/etc/immortal.yaml" {
		t.Errorf("configPath = %q, want /etc/immortal.yaml", parsed.configPath)
	}
	if parsed.invocation.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", parsed.invocation.Interval)
	}
	if !slices.Equal(parsed.invocation.Program, []string{"/bin/sleep", "60"}) {
		t.Errorf("Program = %v", parsed.invocation.Program)
	}
}

func TestParseArgumentsErrors(t *testing.T) {
	if _, err := parseArguments([]string{"immortal-watchdog", "6", "4"}); !errors.Is(err, immortal.ErrInvalidArguments) {
		t.Errorf("missing program error = %v, want ErrInvalidArguments", err)
	}
	if _, err := parseArguments([]string{"immortal-watchdog", "--bogus", "6", "4", "/bin/true"}); err == nil {
		t.Error("unknown flag accepted")
	}
}
