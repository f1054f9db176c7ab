// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package journal

import "github.com/bureau-foundation/systemd/lib/memfd"

// SetMemfdCreator replaces the slow-path memory file constructor.
func SetMemfdCreator(transport *Transport, create func(name string) (*memfd.File, error)) {
	transport.createMemfd = create
}
