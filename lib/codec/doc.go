// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for on-disk state.
//
// The only state this module persists is the revival record the
// external watchdog writes just before it replaces itself with the
// program it supervises. Encoding is Core Deterministic (RFC 8949
// §4.2) so the same record always produces the same bytes, and
// timestamps keep nanosecond precision as RFC 3339 strings.
//
//	data, err := codec.Marshal(record)
//	err = codec.Unmarshal(data, &record)
package codec
