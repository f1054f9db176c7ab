// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/systemd/lib/config"
	"github.com/bureau-foundation/systemd/lib/journal"
	"github.com/bureau-foundation/systemd/lib/process"
)

// recordFlags are the flags shared by every command that builds a
// record.
type recordFlags struct {
	configPath string
	socketPath string
	priority   string
	identifier string
	fields     []string
}

func (f *recordFlags) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "configuration file (default: $BUREAU_JOURNAL_CONFIG)")
	flagSet.StringVar(&f.socketPath, "socket", "", "journal socket path (overrides config)")
	flagSet.StringVarP(&f.priority, "priority", "p", "", "priority keyword or 0-7 (overrides config)")
	flagSet.StringVarP(&f.identifier, "identifier", "t", "", "SYSLOG_IDENTIFIER (overrides config)")
	flagSet.StringArrayVarP(&f.fields, "field", "f", nil, "extra NAME=VALUE field, repeatable")
}

// record is what a command needs to send: where, at which priority,
// and the fields attached to every message.
type record struct {
	transport *journal.Transport
	priority  journal.Priority
	fields    []journal.Field
}

// resolve merges configuration and flags. Flags win over the file; the
// file wins over built-in defaults.
func (f *recordFlags) resolve(flagSet *pflag.FlagSet) (*record, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	if flagSet.Changed("socket") {
		cfg.SocketPath = f.socketPath
	}
	if flagSet.Changed("priority") {
		cfg.Priority = f.priority
	}
	if flagSet.Changed("identifier") {
		cfg.Identifier = f.identifier
	}
	for _, assignment := range f.fields {
		name, value, found := strings.Cut(assignment, "=")
		if !found {
			return nil, process.Usage(fmt.Errorf("--field %q: expected NAME=VALUE", assignment))
		}
		cfg.Fields = append(cfg.Fields, config.Field{Name: name, Value: value})
	}
	if err := cfg.Validate(); err != nil {
		return nil, process.Usage(err)
	}

	return &record{
		transport: newTransport(cfg.SocketPath),
		priority:  cfg.DefaultPriority(),
		fields:    cfg.JournalFields(),
	}, nil
}

func (f *recordFlags) loadConfig() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = os.Getenv(config.EnvironmentVariable)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// newTransport sends to path. The default socket is gated on journald's
// runtime directory; any other path on the socket file existing.
func newTransport(path string) *journal.Transport {
	if path == journal.SocketPath {
		return journal.DefaultTransport
	}
	return &journal.Transport{
		SocketPath: path,
		Available: func() bool {
			info, err := os.Stat(path)
			return err == nil && info.Mode()&os.ModeSocket != 0
		},
	}
}

// send delivers one message and turns "not available" into an error,
// since a command line user asked for delivery explicitly.
func (r *record) send(message string) error {
	sent, err := r.transport.Send(r.priority, message, r.fields...)
	if err != nil {
		return err
	}
	if !sent {
		return fmt.Errorf("journal not available at %s", filepath.Clean(r.transport.SocketPath))
	}
	return nil
}

// flagError maps a flag parsing failure to a usage error. --help has
// already printed the defaults and is not a failure.
func flagError(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return process.Usage(err)
}
