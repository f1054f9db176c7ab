// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes used by the commands.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries a specific exit code out of run().
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Usage wraps err so that the process exits with ExitUsage.
func Usage(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// Code returns the exit status for err: 0 for nil, the ExitError code
// when err wraps one, ExitFailure otherwise.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Report writes "error: err" to w.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// Fatal writes "error: err" to stderr and exits with Code(err). Use it
// in main() for errors from run() where the structured logger may not
// be initialized.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(Code(err))
}
