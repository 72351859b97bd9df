// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error handler for the
// binaries in this module. A failure in main() may happen before the
// structured logger exists (bad flags, unreadable config), so it is
// reported as a plain line on stderr.
package process
