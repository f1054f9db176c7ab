// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the socket-level
// packages in this module.
//
// [SocketDir] creates a short-named temporary directory in /tmp for
// Unix-domain sockets. sun_path is 108 bytes, and t.TempDir() nests the
// test name into the path, which overflows that limit for long test
// names. The directory is removed when the test completes.
//
// [RequireReceive] wraps the select-with-timeout safety valve used when
// a test waits on a receiver goroutine, so individual tests never call
// time.After directly.
//
// [UniqueID] returns monotonically increasing identifiers, used to tag
// records so a receiver can tell which test sent them.
//
// All helpers call t.Fatalf on failure; setup failures are not
// recoverable.
package testutil
