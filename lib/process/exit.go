// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// ExitFailure is the status Fatal exits with.
const ExitFailure = 1

// Fatal writes "error: err" to stderr and exits with ExitFailure. Use
// it in main() for errors returned from run().
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(ExitFailure)
}
