// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the
// bureau-journal commands: fatal error reporting to stderr before or
// instead of the structured logger, and mapping errors to exit codes.
//
// Library packages never write to stdout or stderr; only this package
// and the CLI do.
package process
