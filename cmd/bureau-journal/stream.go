// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/systemd/lib/daemon"
	"github.com/bureau-foundation/systemd/lib/journal"
	"github.com/bureau-foundation/systemd/lib/process"
)

// streamCmd reports what this process can detect about the journal and
// the service manager, one "key: value" line each.
func streamCmd(args []string, std streams) error {
	if len(args) > 0 {
		return process.Usage(fmt.Errorf("stream: unexpected argument: %s", args[0]))
	}
	w := std.stdout

	printLine(w, "booted", yesNo(daemon.Booted()))
	printLine(w, "journal socket", fmt.Sprintf("%s (%s)", journal.SocketPath, availability(journal.Available())))

	stream, err := journal.StreamFromEnvDefault()
	switch {
	case err != nil:
		printLine(w, "journal stream", "unset")
	default:
		printLine(w, "journal stream", fmt.Sprintf("%s (stderr connected: %s)", stream, yesNo(journal.ConnectedToJournal())))
	}

	if notifySocket := os.Getenv(daemon.NotifySocketEnvironment); notifySocket != "" {
		printLine(w, "notify socket", notifySocket)
	} else {
		printLine(w, "notify socket", "unset")
	}

	if interval, enabled := daemon.WatchdogEnabled(false); enabled {
		printLine(w, "watchdog", interval.String())
	} else {
		printLine(w, "watchdog", "disabled")
	}

	if loader, ok := daemon.Credentials(); ok {
		ids, err := loader.List()
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		printLine(w, "credentials", fmt.Sprintf("%s (%d)", loader.Directory(), len(ids)))
	} else {
		printLine(w, "credentials", "none")
	}
	return nil
}

func printLine(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s: %s\n", key, value)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func availability(available bool) string {
	if available {
		return "available"
	}
	return "not available"
}
