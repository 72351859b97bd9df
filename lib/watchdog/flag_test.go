// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestFlag(t *testing.T) {
	var flag Flag
	if flag.IsSet() || flag.Take() {
		t.Fatal("zero Flag reports set")
	}

	flag.Set()
	flag.Set()
	if !flag.IsSet() {
		t.Fatal("IsSet() = false after Set")
	}
	if !flag.Take() {
		t.Fatal("Take() = false after Set")
	}
	if flag.Take() {
		t.Error("second Take() = true, want false")
	}

	flag.Set()
	flag.Clear()
	if flag.IsSet() {
		t.Error("IsSet() = true after Clear")
	}
}

func TestListenRaisesFlag(t *testing.T) {
	var flag Flag
	receiver := Listen(syscall.SIGUSR2, &flag)
	defer receiver.Close()

	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	deadline := time.Now().Add(testTimeout)
	for !flag.IsSet() {
		if time.Now().After(deadline) {
			t.Fatal("flag not raised after signal delivery")
		}
		time.Sleep(5 * time.Millisecond)
	}

	receiver.Close()
	receiver.Close()
}
