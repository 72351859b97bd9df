// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for both sides of
// a supervision ring.
//
// Configuration comes from at most one file, named by the
// IMMORTAL_CONFIG environment variable (via [Load]) or passed
// explicitly (via [LoadFile]). There is no discovery and no search
// path. Because a protected program must run without any setup, an
// unset IMMORTAL_CONFIG yields [Default] rather than an error.
//
// The file is applied on top of [Default]; omitted keys keep their
// defaults. ${VAR} and ${VAR:-default} patterns are expanded in path
// fields after loading. No environment variable overrides a value
// directly.
//
// Both the protected program and the external watchdog read the same
// file: the watchdog inherits IMMORTAL_CONFIG through spawn.
//
// This package depends on no other packages in this module.
package config
