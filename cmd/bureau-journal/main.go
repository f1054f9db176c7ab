// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-journal writes structured records to the systemd journal over
// the native protocol and talks to the service manager.
//
// Usage:
//
//	bureau-journal send [flags] <message>...
//	bureau-journal cat [flags]
//	bureau-journal notify [flags] [KEY=VALUE...]
//	bureau-journal encode [flags] <message>...
//	bureau-journal decode [flags]
//	bureau-journal stream
//	bureau-journal version
package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/systemd/lib/process"
	"github.com/bureau-foundation/systemd/lib/version"
)

// streams are the process's standard files, replaced in tests.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// stdinTerminal is true when stdin is an interactive terminal.
	stdinTerminal bool
}

func main() {
	standard := streams{
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		stdinTerminal: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if err := run(os.Args[1:], standard); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, std streams) error {
	if len(args) < 1 {
		printUsage(std.stderr)
		return process.Usage(fmt.Errorf("no command given"))
	}

	logger := newLogger(std.stderr)
	command, rest := args[0], args[1:]

	switch command {
	case "send":
		return sendCmd(rest, std, logger)
	case "cat":
		return catCmd(rest, std, logger)
	case "notify":
		return notifyCmd(rest, std, logger)
	case "encode":
		return encodeCmd(rest, std)
	case "decode":
		return decodeCmd(rest, std)
	case "stream":
		return streamCmd(rest, std)
	case "version", "--version", "-v":
		fmt.Fprintf(std.stdout, "bureau-journal %s\n", version.Info())
		return nil
	case "help", "--help", "-h":
		printUsage(std.stdout)
		return nil
	default:
		printUsage(std.stderr)
		return process.Usage(fmt.Errorf("unknown command: %s", command))
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `bureau-journal - Write to the systemd journal and notify the service manager

USAGE
    bureau-journal <command> [flags] [args...]

COMMANDS
    send      Send one record built from the arguments
    cat       Send each line of stdin (or --file) as a record
    notify    Send sd_notify state changes to $NOTIFY_SOCKET
    encode    Write the native-protocol encoding of a record to stdout
    decode    Print the fields of a native-protocol record
    stream    Show journal, stream, and service manager detection
    version   Show version

EXAMPLES
    # Send a warning with extra fields
    bureau-journal send -p warning -f UNIT_ROLE=worker "disk nearly full"

    # Forward a compressed log file, one record per line
    bureau-journal cat --file build.log.zst

    # Tell systemd the service is ready
    bureau-journal notify --ready --status "serving"

ENVIRONMENT
    BUREAU_JOURNAL_CONFIG  Path to the configuration file (YAML or JSONC)
    BUREAU_DEBUG           Enable debug logging
`)
}
