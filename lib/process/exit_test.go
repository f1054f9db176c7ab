// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	usage := Usage(errors.New("unknown flag --frobnicate"))
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), ExitFailure},
		{"usage", usage, ExitUsage},
		{"wrapped usage", fmt.Errorf("send: %w", usage), ExitUsage},
		{"custom", &ExitError{Code: 75, Err: errors.New("temporary")}, 75},
	}
	for _, test := range tests {
		if got := Code(test.err); got != test.want {
			t.Errorf("Code(%s) = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := Usage(inner)
	if !errors.Is(err, inner) {
		t.Error("Usage error does not unwrap to its cause")
	}
	if err.Error() != "inner" {
		t.Errorf("Error() = %q, want %q", err.Error(), "inner")
	}
}

func TestReport(t *testing.T) {
	var buffer bytes.Buffer
	Report(&buffer, errors.New("socket missing"))
	if got := buffer.String(); got != "error: socket missing\n" {
		t.Errorf("Report wrote %q", got)
	}
}
