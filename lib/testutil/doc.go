// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests that wait on a scheduler loop or a child process
// fail instead of hanging. They are the only place in the test suite
// where wall-clock timeouts appear; scheduling itself is driven by
// clock.FakeClock.
//
// All helpers call t.Fatalf on failure.
package testutil
