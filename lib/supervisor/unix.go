// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Unix implements Supervisor with fork/exec, kill, and wait4.
type Unix struct {
	logger *slog.Logger

	// execFunc replaces the process image. Nil means unix.Exec. Tests
	// substitute a recorder so ReplaceSelf can be exercised without
	// losing the test binary.
	execFunc func(argv0 string, argv []string, envv []string) error
}

// NewUnix returns a Unix supervisor. A nil logger discards output.
func NewUnix(logger *slog.Logger) *Unix {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Unix{logger: logger}
}

// Spawn implements Supervisor. The child inherits stdin, stdout and
// stderr. A nil environment inherits the current one.
func (u *Unix) Spawn(commandLine []string, environment []string) (int, error) {
	path, err := resolve(commandLine)
	if err != nil {
		return 0, err
	}
	if environment == nil {
		environment = os.Environ()
	}

	process, err := os.StartProcess(path, commandLine, &os.ProcAttr{
		Env:   environment,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return 0, fmt.Errorf("spawning %s: %w", path, err)
	}
	pid := process.Pid

	// Release the handle: reaping goes through WaitFor/Reap by pid.
	if err := process.Release(); err != nil {
		u.logger.Warn("releasing process handle", "pid", pid, "error", err)
	}

	u.logger.Debug("spawned process", "pid", pid, "path", path)
	return pid, nil
}

// ReplaceSelf implements Supervisor.
func (u *Unix) ReplaceSelf(commandLine []string) error {
	path, err := resolve(commandLine)
	if err != nil {
		return err
	}

	execFunction := u.execFunc
	if execFunction == nil {
		execFunction = unix.Exec
	}

	u.logger.Info("replacing process image", "path", path, "pid", os.Getpid())
	err = execFunction(path, commandLine, os.Environ())

	// Reaching here means exec failed and this image is still running.
	return fmt.Errorf("exec %s: %w", path, err)
}

// Signal implements Supervisor.
func (u *Unix) Signal(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("signal %v to pid %d: %w", sig, pid, ErrInvalidPID)
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("signal %v to pid %d: %w", sig, pid, err)
	}
	return nil
}

// WaitFor implements Supervisor. Interrupted waits are retried.
func (u *Unix) WaitFor(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("wait for pid %d: %w", pid, ErrInvalidPID)
	}
	var status unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &status, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("wait for pid %d: %w", pid, err)
		}
		u.logger.Debug("process exited", "pid", pid, "status", describe(status))
		return nil
	}
}

// Reap implements Supervisor.
func (u *Unix) Reap(pid int) (bool, error) {
	if pid <= 0 {
		return false, fmt.Errorf("reap pid %d: %w", pid, ErrInvalidPID)
	}
	var status unix.WaitStatus
	for {
		collected, err := unix.Wait4(pid, &status, unix.WNOHANG, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			return true, nil
		case err != nil:
			return false, fmt.Errorf("reap pid %d: %w", pid, err)
		case collected == pid:
			u.logger.Debug("process reaped", "pid", pid, "status", describe(status))
			return true, nil
		default:
			return false, nil
		}
	}
}

// resolve returns the executable path for commandLine[0], searching
// PATH for bare names.
func resolve(commandLine []string) (string, error) {
	if len(commandLine) == 0 || commandLine[0] == "" {
		return "", ErrNoCommand
	}
	name := commandLine[0]
	if strings.Contains(name, "/") {
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", name, err)
	}
	return path, nil
}

func describe(status unix.WaitStatus) string {
	switch {
	case status.Exited():
		return fmt.Sprintf("exit %d", status.ExitStatus())
	case status.Signaled():
		return fmt.Sprintf("signal %v", status.Signal())
	default:
		return fmt.Sprintf("status %#x", uint32(status))
	}
}
