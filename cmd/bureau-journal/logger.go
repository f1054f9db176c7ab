// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/systemd/lib/journal"
)

// newLogger returns the command's own diagnostic logger. When stderr is
// the journal stream, records go to the journal natively so they keep
// their fields; on a terminal they are text; otherwise JSON.
// BUREAU_DEBUG lowers the level to debug.
func newLogger(stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("BUREAU_DEBUG") != "" {
		level = slog.LevelDebug
	}

	file, isFile := stderr.(*os.File)
	switch {
	case isFile && file == os.Stderr && journal.ConnectedToJournal():
		return slog.New(journal.NewHandler(nil, &journal.HandlerOptions{
			Level:      level,
			Identifier: "bureau-journal",
		}))
	case isFile && term.IsTerminal(int(file.Fd())):
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	default:
		return slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
}
