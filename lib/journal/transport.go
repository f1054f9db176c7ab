// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package journal

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/systemd/lib/fdpass"
	"github.com/bureau-foundation/systemd/lib/memfd"
)

const (
	// SocketPath is journald's native-protocol datagram socket.
	SocketPath = "/run/systemd/journal/socket"

	// RuntimeDirectory holds SocketPath. Its absence means journald is
	// not running on this host.
	RuntimeDirectory = "/run/systemd/journal"

	// memfdName labels slow-path memory files in /proc/<pid>/fd.
	memfdName = "bureau-journal"
)

// Available reports whether the journald runtime directory exists.
func Available() bool {
	info, err := os.Stat(RuntimeDirectory)
	return err == nil && info.IsDir()
}

// IsOversizedPayload reports whether err is the kernel refusing a
// datagram because it exceeds what the socket can carry (EMSGSIZE).
// This is the only error that moves a send onto the memfd path.
func IsOversizedPayload(err error) bool {
	return errors.Is(err, unix.EMSGSIZE)
}

// Transport sends encoded records to a journald-compatible socket. The
// zero value sends to SocketPath without an availability check. A
// Transport holds no connection and is safe for concurrent use.
type Transport struct {
	// SocketPath is the destination datagram socket. Empty means the
	// package-level SocketPath.
	SocketPath string

	// Available gates every send. When it returns false, Send reports
	// (false, nil) without doing any I/O. Nil means always available.
	Available func() bool

	// createMemfd makes the slow-path memory file. Tests replace it to
	// observe or break the fallback.
	createMemfd func(name string) (*memfd.File, error)
}

// DefaultTransport sends to journald when its runtime directory exists.
var DefaultTransport = &Transport{
	SocketPath: SocketPath,
	Available:  Available,
}

// Send encodes a record with DefaultTransport. See Transport.Send.
func Send(priority Priority, message string, fields ...Field) (bool, error) {
	return DefaultTransport.Send(priority, message, fields...)
}

// Print sends a message with no extra fields through DefaultTransport.
func Print(priority Priority, message string) (bool, error) {
	return DefaultTransport.Send(priority, message)
}

// Printf is Print with fmt formatting.
func Printf(priority Priority, format string, arguments ...any) (bool, error) {
	return DefaultTransport.Send(priority, fmt.Sprintf(format, arguments...))
}

func (t *Transport) path() string {
	if t.SocketPath == "" {
		return SocketPath
	}
	return t.SocketPath
}

// Send encodes one record and delivers it. It returns (true, nil) when
// the record was handed to the kernel, (false, nil) when the transport
// is not available, and (false, err) when delivery failed. A failed
// send did not deliver anything: there is no partial success.
func (t *Transport) Send(priority Priority, message string, fields ...Field) (bool, error) {
	if t.Available != nil && !t.Available() {
		return false, nil
	}
	return t.send(Encode(priority, message, fields))
}

// Write delivers an already encoded buffer, such as one produced by
// Encode or built field by field with AppendField. The availability
// check applies as for Send.
func (t *Transport) Write(buffer []byte) (bool, error) {
	if t.Available != nil && !t.Available() {
		return false, nil
	}
	return t.send(buffer)
}

func (t *Transport) send(buffer []byte) (bool, error) {
	socket, err := fdpass.Socket()
	if err != nil {
		return false, fmt.Errorf("journal: %w", err)
	}
	defer socket.Close()

	path := t.path()
	_, err = fdpass.SendWithData(socket, path, buffer)
	if err == nil {
		return true, nil
	}
	if !IsOversizedPayload(err) {
		return false, fmt.Errorf("journal: send to %s: %w", path, err)
	}

	if err := t.sendMemfd(socket, path, buffer); err != nil {
		return false, fmt.Errorf("journal: send %d-byte record to %s via memfd: %w", len(buffer), path, err)
	}
	return true, nil
}

// sendMemfd writes buffer into a sealed memory file and passes its
// descriptor to path. Write, seal, send is a strict order: journald
// refuses unsealed memfds, and a reader must never see a file that can
// still change.
func (t *Transport) sendMemfd(socket *os.File, path string, buffer []byte) error {
	create := t.createMemfd
	if create == nil {
		create = memfd.Create
	}

	file, err := create(memfdName)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(buffer); err != nil {
		return err
	}
	if err := file.Seal(); err != nil {
		return err
	}
	released, err := file.Release()
	if err != nil {
		return err
	}

	owned := fdpass.Own(released)
	defer owned.Close()

	_, err = fdpass.SendOwned(socket, path, owned)
	return err
}
