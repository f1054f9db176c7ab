// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/systemd/lib/journal"
	"github.com/bureau-foundation/systemd/lib/process"
)

// encodeCmd writes the wire form of a record to stdout without sending
// it, for inspection or for piping to another transport.
func encodeCmd(args []string, std streams) error {
	var flags recordFlags
	flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flags.addFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return flagError(err)
	}
	if flagSet.NArg() == 0 {
		return process.Usage(errors.New("encode: no message given"))
	}

	target, err := flags.resolve(flagSet)
	if err != nil {
		return err
	}
	buffer := journal.Encode(target.priority, strings.Join(flagSet.Args(), " "), target.fields)
	if _, err := std.stdout.Write(buffer); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// decodeCmd prints the fields of one encoded record, one per line.
// Values that are not printable text are shown quoted.
func decodeCmd(args []string, std streams) error {
	var filePath string
	flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flagSet.StringVar(&filePath, "file", "", "read from this file instead of stdin (.zst and .lz4 are decompressed)")
	if err := flagSet.Parse(args); err != nil {
		return flagError(err)
	}

	input, err := openInput(filePath, std.stdin)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer input.Close()

	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("decode: reading input: %w", err)
	}
	fields, err := journal.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, field := range fields {
		if printable(field.Value) {
			fmt.Fprintf(std.stdout, "%s=%s\n", field.Name, field.Value)
		} else {
			fmt.Fprintf(std.stdout, "%s=%q\n", field.Name, field.Value)
		}
	}
	return nil
}

func printable(value string) bool {
	return utf8.ValidString(value) && !strings.ContainsFunc(value, func(r rune) bool {
		return !unicode.IsPrint(r)
	})
}
