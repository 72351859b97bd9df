// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestAutoFormatFollowsTerminal(t *testing.T) {
	var piped bytes.Buffer
	logger, err := newLogger(&piped, false, "info", "auto")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("heartbeat armed", "target_pid", 42)

	var line map[string]any
	if err := json.Unmarshal(piped.Bytes(), &line); err != nil {
		t.Fatalf("piped output is not JSON: %v (%q)", err, piped.String())
	}
	if line["msg"] != "heartbeat armed" {
		t.Errorf("msg = %v, want heartbeat armed", line["msg"])
	}

	var terminal bytes.Buffer
	logger, err = newLogger(&terminal, true, "info", "auto")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("heartbeat armed", "target_pid", 42)
	if !strings.Contains(terminal.String(), "target_pid=42") {
		t.Errorf("terminal output = %q, want text handler", terminal.String())
	}
}

func TestForcedFormat(t *testing.T) {
	var output bytes.Buffer
	logger, err := newLogger(&output, true, "info", "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("forced")
	if !json.Valid(output.Bytes()) {
		t.Errorf("output = %q, want JSON", output.String())
	}
}

func TestLevelFilters(t *testing.T) {
	var output bytes.Buffer
	logger, err := newLogger(&output, false, "warn", "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(output.String(), "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(output.String(), "kept") {
		t.Error("warn record missing")
	}
}

func TestInvalidSettings(t *testing.T) {
	var output bytes.Buffer
	if _, err := newLogger(&output, false, "verbose", "json"); err == nil {
		t.Error("unknown level accepted")
	}
	if _, err := newLogger(&output, false, "info", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}
