// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
	"time"
)

type sample struct {
	Name      string    `cbor:"name"`
	PID       int       `cbor:"pid"`
	Arguments []string  `cbor:"arguments,omitempty"`
	Timestamp time.Time `cbor:"timestamp"`
}

func TestTimestampKeepsNanoseconds(t *testing.T) {
	original := sample{
		Name:      "watchdog",
		PID:       4242,
		Arguments: []string{"/usr/bin/protected", "--verbose"},
		Timestamp: time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.PID != original.PID || decoded.Name != original.Name {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal produced different bytes for the same map")
		}
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{"name": "watchdog", "future_field": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Name != "watchdog" {
		t.Errorf("Name = %q, want %q", decoded.Name, "watchdog")
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var decoded sample
	if err := Unmarshal([]byte{0xff, 0xfe, 0xfd}, &decoded); err == nil {
		t.Fatal("Unmarshal of garbage should fail")
	}
}
