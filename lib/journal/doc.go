// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal writes structured records to systemd-journald using
// its native datagram protocol.
//
// # Encoding
//
// [Encode] turns a [Priority], a message, and ordered [Field] values into
// one wire buffer. PRIORITY comes first, then MESSAGE, then the caller's
// fields in order. Caller-supplied PRIORITY and MESSAGE fields are
// dropped in favour of the explicit arguments, and fields whose names
// fail [ValidFieldName] are dropped silently: encoding never fails.
//
// Each field is framed as either
//
//	NAME=value\n                       (value contains no newline)
//	NAME\n<uint64 LE length>value\n    (value contains a newline)
//
// [Decode] parses the same format back into fields.
//
// # Transport
//
// [Transport.Send] opens a fresh unbound datagram socket per call and
// sends the buffer to [SocketPath]. If the kernel rejects the datagram
// as too large ([IsOversizedPayload]), the buffer is written to a sealed
// memfd (lib/memfd) and the descriptor is sent instead as SCM_RIGHTS
// data (lib/fdpass). Any other error is returned unchanged with its
// errno. There is no retry and no shared state between calls.
//
// Send returns (false, nil) when the journal is not available to this
// process, so callers can treat logging as best effort:
//
//	if _, err := journal.Send(journal.Info, "started", journal.Field{Name: "UNIT_ROLE", Value: "worker"}); err != nil {
//	    // the record was not delivered; keep running
//	}
//
// # Integration
//
// [NewHandler] adapts a Transport to log/slog. [ConnectedToJournal]
// reports whether stdout or stderr already goes to the journal (via
// $JOURNAL_STREAM), which is the usual signal for upgrading a service to
// native logging.
//
// Nothing in this package logs its own failures: a journal writer that
// reports errors through the journal would recurse.
package journal
