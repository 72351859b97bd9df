// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/immortal/lib/codec"
)

// Record describes a revival by image replacement. The external
// watchdog writes it immediately before replacing itself with the
// protected program; the program reads it on startup to learn it was
// revived rather than launched.
type Record struct {
	// RingID identifies the supervision ring across revivals.
	RingID string `cbor:"ring_id"`

	// WatchdogPID is the pid of the watchdog that replaced its image.
	// Image replacement keeps the pid, so a program whose own pid
	// matches is the revived one.
	WatchdogPID int `cbor:"watchdog_pid"`

	// PreviousPID is the unresponsive program the watchdog killed.
	PreviousPID int `cbor:"previous_pid"`

	// CommandLine is the argv the watchdog replaced itself with.
	CommandLine []string `cbor:"command_line"`

	// Timestamp is when the replacement was attempted.
	Timestamp time.Time `cbor:"timestamp"`
}

// WriteRecord atomically writes record to path with mode 0600: the
// encoding goes to path.tmp, is fsynced, then renamed into place.
// Readers never see a partial record. The parent directory must exist.
func WriteRecord(path string, record Record) error {
	data, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding revival record: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary revival record: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary revival record: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary revival record: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary revival record: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming revival record into place: %w", err)
	}

	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}

// ReadRecord decodes the record at path. A missing file yields an error
// wrapping os.ErrNotExist.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := codec.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decoding revival record %s: %w", path, err)
	}
	return record, nil
}

// CheckRecord returns the record at path and true when it exists and
// is no older than maxAge. A missing or stale record returns false with
// no error; any other failure (permissions, corrupt data) is returned
// so "no revival" stays distinguishable from "unreadable record".
func CheckRecord(path string, maxAge time.Duration) (Record, bool, error) {
	record, err := ReadRecord(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	if time.Since(record.Timestamp) > maxAge {
		return Record{}, false, nil
	}
	return record, true, nil
}

// ClearRecord removes the record at path. A missing file is not an
// error.
func ClearRecord(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing revival record: %w", err)
	}
	return nil
}
