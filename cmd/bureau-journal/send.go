// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/systemd/lib/process"
)

func sendCmd(args []string, std streams, logger *slog.Logger) error {
	var flags recordFlags
	flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flags.addFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return flagError(err)
	}

	if flagSet.NArg() == 0 {
		return process.Usage(errors.New("send: no message given"))
	}
	message := strings.Join(flagSet.Args(), " ")

	target, err := flags.resolve(flagSet)
	if err != nil {
		return err
	}
	if err := target.send(message); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Debug("record sent",
		"socket", target.transport.SocketPath,
		"priority", target.priority.String(),
		"fields", len(target.fields),
	)
	return nil
}

func catCmd(args []string, std streams, logger *slog.Logger) error {
	var flags recordFlags
	var filePath string
	var whole bool
	flagSet := pflag.NewFlagSet("cat", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flags.addFlags(flagSet)
	flagSet.StringVar(&filePath, "file", "", "read from this file instead of stdin (.zst and .lz4 are decompressed)")
	flagSet.BoolVar(&whole, "whole", false, "send the entire input as a single record")
	if err := flagSet.Parse(args); err != nil {
		return flagError(err)
	}
	if flagSet.NArg() > 0 {
		return process.Usage(fmt.Errorf("cat: unexpected argument: %s", flagSet.Arg(0)))
	}

	target, err := flags.resolve(flagSet)
	if err != nil {
		return err
	}

	if filePath == "" && std.stdinTerminal {
		logger.Warn("reading records from the terminal; end input with Ctrl-D")
	}
	input, err := openInput(filePath, std.stdin)
	if err != nil {
		return fmt.Errorf("cat: %w", err)
	}
	defer input.Close()

	if whole {
		data, err := io.ReadAll(input)
		if err != nil {
			return fmt.Errorf("cat: reading input: %w", err)
		}
		if err := target.send(string(data)); err != nil {
			return fmt.Errorf("cat: %w", err)
		}
		logger.Debug("record sent", "bytes", len(data))
		return nil
	}

	count, err := sendLines(input, target)
	logger.Debug("lines sent", "count", count)
	if err != nil {
		return fmt.Errorf("cat: after %d records: %w", count, err)
	}
	return nil
}

// sendLines sends each line of input as a record, without its line
// terminator. A final line without a newline is still sent.
func sendLines(input io.Reader, target *record) (int, error) {
	reader := bufio.NewReader(input)
	count := 0
	for {
		line, readErr := reader.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if err := target.send(line); err != nil {
				return count, err
			}
			count++
		}
		if readErr == io.EOF {
			return count, nil
		}
		if readErr != nil {
			return count, fmt.Errorf("reading input: %w", readErr)
		}
	}
}
