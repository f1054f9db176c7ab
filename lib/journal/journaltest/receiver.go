// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

// Package journaltest provides an in-process stand-in for journald's
// native socket. A [Receiver] binds a datagram socket in a short
// temporary directory, accepts records sent in the datagram body or as
// a sealed memfd descriptor (rejecting unsealed ones, as journald does),
// decodes them with journal.Decode, and delivers them on a channel.
package journaltest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/systemd/lib/journal"
	"github.com/bureau-foundation/systemd/lib/memfd"
	"github.com/bureau-foundation/systemd/lib/testutil"
)

// receiveTimeout bounds how long Next waits for a record.
const receiveTimeout = 5 * time.Second

// maxDatagram is larger than any datagram the kernel accepts with
// default socket buffers, so the fast path never truncates here.
const maxDatagram = 4 << 20

// Entry is one received record.
type Entry struct {
	// Fields holds the decoded fields in wire order.
	Fields []journal.Field

	// Raw is the undecoded record.
	Raw []byte

	// ViaMemfd is true when the record arrived as a descriptor rather
	// than in the datagram body.
	ViaMemfd bool
}

// Get returns the value of the first field called name.
func (e Entry) Get(name string) (string, bool) {
	for _, field := range e.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Count returns how many fields are called name.
func (e Entry) Count(name string) int {
	count := 0
	for _, field := range e.Fields {
		if field.Name == name {
			count++
		}
	}
	return count
}

// Receiver is a journald-compatible datagram sink.
type Receiver struct {
	conn    *net.UnixConn
	path    string
	results chan result
}

// result is one datagram outcome: a decoded entry or the reason the
// datagram was rejected.
type result struct {
	entry Entry
	err   error
}

// NewReceiver binds a receiver and starts reading. It is closed when the
// test ends.
func NewReceiver(t testing.TB) *Receiver {
	t.Helper()

	path := filepath.Join(testutil.SocketDir(t), "journal.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("journaltest: listen %s: %v", path, err)
	}

	receiver := &Receiver{
		conn:    conn,
		path:    path,
		results: make(chan result, 16),
	}
	go receiver.run()
	t.Cleanup(func() { conn.Close() })
	return receiver
}

// Path returns the socket path records should be sent to.
func (r *Receiver) Path() string {
	return r.path
}

// Transport returns a transport that always sends to this receiver.
func (r *Receiver) Transport() *journal.Transport {
	return &journal.Transport{
		SocketPath: r.path,
		Available:  func() bool { return true },
	}
}

// Next waits for the next record, failing the test on timeout or on a
// datagram the receiver could not accept.
func (r *Receiver) Next(t testing.TB) Entry {
	t.Helper()
	received := testutil.RequireReceive(t, r.results, receiveTimeout, "waiting for journal entry on %s", r.path)
	if received.err != nil {
		t.Fatalf("journaltest: %v", received.err)
	}
	return received.entry
}

// Pending reports whether a datagram has arrived that Next has not yet
// returned.
func (r *Receiver) Pending() bool {
	return len(r.results) > 0
}

func (r *Receiver) run() {
	defer close(r.results)

	body := make([]byte, maxDatagram)
	control := make([]byte, unix.CmsgSpace(4*4))
	for {
		n, controlLength, _, _, err := r.conn.ReadMsgUnix(body, control)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			r.results <- result{err: err}
			return
		}

		entry, err := r.accept(body[:n], control[:controlLength])
		r.results <- result{entry: entry, err: err}
	}
}

func (r *Receiver) accept(body, control []byte) (Entry, error) {
	if len(control) == 0 {
		raw := append([]byte(nil), body...)
		fields, err := journal.Decode(raw)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Fields: fields, Raw: raw}, nil
	}

	if len(body) != 0 {
		return Entry{}, fmt.Errorf("descriptor record carried a %d-byte body", len(body))
	}
	files, err := parseRights(control)
	if err != nil {
		return Entry{}, err
	}
	defer func() {
		for _, file := range files {
			file.Close()
		}
	}()
	if len(files) != 1 {
		return Entry{}, fmt.Errorf("expected one descriptor, got %d", len(files))
	}

	raw, err := readSealed(files[0])
	if err != nil {
		return Entry{}, err
	}
	fields, err := journal.Decode(raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Fields: fields, Raw: raw, ViaMemfd: true}, nil
}

func parseRights(control []byte) ([]*os.File, error) {
	messages, err := unix.ParseSocketControlMessage(control)
	if err != nil {
		return nil, fmt.Errorf("parse control message: %w", err)
	}
	var files []*os.File
	for index := range messages {
		fds, err := unix.ParseUnixRights(&messages[index])
		if err != nil {
			return nil, fmt.Errorf("parse SCM_RIGHTS: %w", err)
		}
		for _, fd := range fds {
			files = append(files, os.NewFile(uintptr(fd), "journaltest-memfd"))
		}
	}
	return files, nil
}

// readSealed reads the whole memfd from offset zero. The sender's write
// left the shared file offset at the end, so positional reads are
// required.
func readSealed(file *os.File) ([]byte, error) {
	seals, err := unix.FcntlInt(file.Fd(), unix.F_GET_SEALS, 0)
	if err != nil {
		return nil, fmt.Errorf("get seals: %w", err)
	}
	if seals&memfd.AllSeals != memfd.AllSeals {
		return nil, fmt.Errorf("memfd seals %#x missing some of %#x", seals, memfd.AllSeals)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(io.NewSectionReader(file, 0, info.Size()))
}
