// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package journal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// StreamEnvironment is the variable systemd sets to the device and inode
// of a service's stdout/stderr when they are connected to the journal.
const StreamEnvironment = "JOURNAL_STREAM"

// Stream identifies a journal stream socket by device and inode number.
type Stream struct {
	Device uint64
	Inode  uint64
}

// String formats s the way systemd writes $JOURNAL_STREAM.
func (s Stream) String() string {
	return fmt.Sprintf("%d:%d", s.Device, s.Inode)
}

// ParseStream parses a "device:inode" pair.
func ParseStream(value string) (Stream, error) {
	deviceText, inodeText, found := strings.Cut(value, ":")
	if !found {
		return Stream{}, fmt.Errorf("parse journal stream: missing separator ':' in %q", value)
	}
	device, err := strconv.ParseUint(deviceText, 10, 64)
	if err != nil {
		return Stream{}, fmt.Errorf("parse journal stream: device %q is not a number: %w", deviceText, err)
	}
	inode, err := strconv.ParseUint(inodeText, 10, 64)
	if err != nil {
		return Stream{}, fmt.Errorf("parse journal stream: inode %q is not a number: %w", inodeText, err)
	}
	return Stream{Device: device, Inode: inode}, nil
}

// StreamFromEnv parses the stream named by the environment variable key.
func StreamFromEnv(key string) (Stream, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return Stream{}, fmt.Errorf("parse journal stream: environment variable %s unset", key)
	}
	return ParseStream(value)
}

// StreamFromEnvDefault parses $JOURNAL_STREAM.
func StreamFromEnvDefault() (Stream, error) {
	return StreamFromEnv(StreamEnvironment)
}

// StreamFromFile returns the stream identity of file's descriptor, for
// comparison against $JOURNAL_STREAM.
func StreamFromFile(file *os.File) (Stream, error) {
	rawConn, err := file.SyscallConn()
	if err != nil {
		return Stream{}, fmt.Errorf("stat %s: %w", file.Name(), err)
	}
	var stat unix.Stat_t
	var statErr error
	if err := rawConn.Control(func(fd uintptr) {
		statErr = unix.Fstat(int(fd), &stat)
	}); err != nil {
		return Stream{}, fmt.Errorf("stat %s: %w", file.Name(), err)
	}
	if statErr != nil {
		return Stream{}, fmt.Errorf("stat %s: %w", file.Name(), os.NewSyscallError("fstat", statErr))
	}
	return Stream{Device: uint64(stat.Dev), Inode: uint64(stat.Ino)}, nil
}

// ConnectedToJournal reports whether stdout or stderr is the journal
// stream named in $JOURNAL_STREAM. systemd recommends that services
// which find this true switch to the native protocol, since stream
// logging loses structure. Any error yields false.
func ConnectedToJournal() bool {
	stream, err := StreamFromEnvDefault()
	if err != nil {
		return false
	}
	return connectedTo(stream, os.Stderr, os.Stdout)
}

func connectedTo(stream Stream, files ...*os.File) bool {
	for _, file := range files {
		if identity, err := StreamFromFile(file); err == nil && identity == stream {
			return true
		}
	}
	return false
}
