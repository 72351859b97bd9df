// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"os"
	"os/signal"
	"slices"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/immortal/lib/testutil"
)

func TestSpawnSignalWait(t *testing.T) {
	supervisor := NewUnix(nil)

	pid, err := supervisor.Spawn([]string{"sleep", "30"}, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("Spawn returned pid %d", pid)
	}

	reaped, err := supervisor.Reap(pid)
	if err != nil {
		t.Fatalf("Reap running child: %v", err)
	}
	if reaped {
		t.Fatal("Reap reported a running child as collected")
	}

	if err := supervisor.Signal(pid, TerminateSignal); err != nil {
		t.Fatalf("Signal: %v", err)
	}

	waited := make(chan error, 1)
	go func() { waited <- supervisor.WaitFor(pid) }()
	if err := testutil.RequireReceive(t, waited, 5*time.Second, "WaitFor killed child"); err != nil {
		t.Fatalf("WaitFor: %v", err)
	}

	// Already collected: no longer our child.
	reaped, err = supervisor.Reap(pid)
	if err != nil {
		t.Fatalf("Reap collected child: %v", err)
	}
	if !reaped {
		t.Error("Reap of an already collected pid should report true")
	}
}

func TestSpawnPassesEnvironment(t *testing.T) {
	supervisor := NewUnix(nil)

	pid, err := supervisor.Spawn(
		[]string{"/bin/sh", "-c", `test "$IMMORTAL_TEST_VALUE" = expected`},
		[]string{"IMMORTAL_TEST_VALUE=expected", "PATH=" + os.Getenv("PATH")},
	)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	var status unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &status, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			t.Fatalf("Wait4: %v", err)
		}
		break
	}
	if !status.Exited() || status.ExitStatus() != 0 {
		t.Errorf("child status = %v, want exit 0 (environment not passed)", describe(status))
	}
}

func TestSpawnErrors(t *testing.T) {
	supervisor := NewUnix(nil)

	if _, err := supervisor.Spawn(nil, nil); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Spawn(nil) error = %v, want ErrNoCommand", err)
	}
	if _, err := supervisor.Spawn([]string{""}, nil); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Spawn(\"\") error = %v, want ErrNoCommand", err)
	}
	if _, err := supervisor.Spawn([]string{"/nonexistent/immortal-binary"}, nil); err == nil {
		t.Error("Spawn of a missing binary should fail")
	}
	if _, err := supervisor.Spawn([]string{"immortal-no-such-command-on-path"}, nil); err == nil {
		t.Error("Spawn of an unresolvable name should fail")
	}
}

func TestSignalRejectsNonPositivePID(t *testing.T) {
	supervisor := NewUnix(nil)
	for _, pid := range []int{0, -1} {
		if err := supervisor.Signal(pid, HeartbeatSignal); !errors.Is(err, ErrInvalidPID) {
			t.Errorf("Signal(%d) error = %v, want ErrInvalidPID", pid, err)
		}
	}
	if err := supervisor.WaitFor(0); !errors.Is(err, ErrInvalidPID) {
		t.Errorf("WaitFor(0) error = %v, want ErrInvalidPID", err)
	}
	if _, err := supervisor.Reap(-1); !errors.Is(err, ErrInvalidPID) {
		t.Errorf("Reap(-1) error = %v, want ErrInvalidPID", err)
	}
}

func TestSignalExitedProcessReportsESRCH(t *testing.T) {
	supervisor := NewUnix(nil)

	pid, err := supervisor.Spawn([]string{"true"}, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := supervisor.WaitFor(pid); err != nil {
		t.Fatalf("WaitFor: %v", err)
	}

	err = supervisor.Signal(pid, HeartbeatSignal)
	if !errors.Is(err, unix.ESRCH) {
		t.Errorf("Signal to reaped pid error = %v, want ESRCH", err)
	}
}

func TestWaitForNonChild(t *testing.T) {
	supervisor := NewUnix(nil)
	err := supervisor.WaitFor(os.Getppid())
	if !errors.Is(err, unix.ECHILD) {
		t.Errorf("WaitFor(parent) error = %v, want ECHILD", err)
	}
}

func TestHeartbeatSignalDelivery(t *testing.T) {
	received := make(chan os.Signal, 1)
	signal.Notify(received, HeartbeatSignal)
	defer signal.Stop(received)

	supervisor := NewUnix(nil)
	if err := supervisor.Signal(os.Getpid(), HeartbeatSignal); err != nil {
		t.Fatalf("Signal self: %v", err)
	}
	got := testutil.RequireReceive(t, received, 5*time.Second, "heartbeat signal delivery")
	if got != HeartbeatSignal {
		t.Errorf("received %v, want %v", got, HeartbeatSignal)
	}
}

func TestReplaceSelfFailureReturnsError(t *testing.T) {
	var gotPath string
	var gotArgv []string
	execFailure := errors.New("exec refused")

	supervisor := NewUnix(nil)
	supervisor.execFunc = func(argv0 string, argv []string, envv []string) error {
		gotPath = argv0
		gotArgv = argv
		return execFailure
	}

	commandLine := []string{"/usr/bin/protected-program", "--port", "8080"}
	err := supervisor.ReplaceSelf(commandLine)
	if !errors.Is(err, execFailure) {
		t.Fatalf("ReplaceSelf error = %v, want wrapped exec failure", err)
	}
	if gotPath != "/usr/bin/protected-program" {
		t.Errorf("exec path = %q, want %q", gotPath, "/usr/bin/protected-program")
	}
	if !slices.Equal(gotArgv, commandLine) {
		t.Errorf("exec argv = %v, want %v", gotArgv, commandLine)
	}
}

func TestReplaceSelfEmptyCommand(t *testing.T) {
	supervisor := NewUnix(nil)
	supervisor.execFunc = func(string, []string, []string) error {
		t.Fatal("exec called for an empty command line")
		return nil
	}
	if err := supervisor.ReplaceSelf(nil); !errors.Is(err, ErrNoCommand) {
		t.Errorf("ReplaceSelf(nil) error = %v, want ErrNoCommand", err)
	}
}
