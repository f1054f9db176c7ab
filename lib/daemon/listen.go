// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ListenFDsStart is the first descriptor number systemd uses for
// sockets passed by socket activation.
const ListenFDsStart = 3

const (
	listenPIDEnvironment     = "LISTEN_PID"
	listenFDsEnvironment     = "LISTEN_FDS"
	listenFDNamesEnvironment = "LISTEN_FDNAMES"
)

// ErrNoListeners is returned by Listeners when the process was not
// socket activated.
var ErrNoListeners = errors.New("daemon: no socket activation descriptors")

// Kind classifies a passed descriptor.
type Kind int

const (
	KindUnknown Kind = iota
	KindFIFO
	KindFile
	KindInet
	KindUnix
)

// String returns a short lower-case name for k.
func (k Kind) String() string {
	switch k {
	case KindFIFO:
		return "fifo"
	case KindFile:
		return "file"
	case KindInet:
		return "inet"
	case KindUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// Descriptor is one socket-activation descriptor.
type Descriptor struct {
	FD   int
	Name string
	Kind Kind
}

// File wraps the descriptor. The returned file owns it.
func (d Descriptor) File() *os.File {
	name := d.Name
	if name == "" {
		name = "listen-fd-" + strconv.Itoa(d.FD)
	}
	return os.NewFile(uintptr(d.FD), name)
}

// Listeners returns the descriptors systemd passed to this process.
// $LISTEN_PID must name this process. Names come from $LISTEN_FDNAMES
// when set. Every returned descriptor is marked close-on-exec.
func Listeners(unsetEnv bool) ([]Descriptor, error) {
	pidText, pidSet := os.LookupEnv(listenPIDEnvironment)
	countText, countSet := os.LookupEnv(listenFDsEnvironment)
	namesText, namesSet := os.LookupEnv(listenFDNamesEnvironment)
	if unsetEnv {
		os.Unsetenv(listenPIDEnvironment)
		os.Unsetenv(listenFDsEnvironment)
		os.Unsetenv(listenFDNamesEnvironment)
	}

	if !pidSet || !countSet {
		return nil, ErrNoListeners
	}
	pid, err := strconv.Atoi(pidText)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", listenPIDEnvironment, err)
	}
	if pid != os.Getpid() {
		return nil, fmt.Errorf("%s=%d does not match this process (%d)", listenPIDEnvironment, pid, os.Getpid())
	}
	count, err := strconv.Atoi(countText)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", listenFDsEnvironment, err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%s=%d is negative", listenFDsEnvironment, count)
	}

	var names []string
	if namesSet && namesText != "" {
		names = strings.Split(namesText, ":")
	}

	descriptors := make([]Descriptor, 0, count)
	for offset := 0; offset < count; offset++ {
		fd := ListenFDsStart + offset
		unix.CloseOnExec(fd)
		descriptor := Descriptor{FD: fd, Kind: classify(fd)}
		if offset < len(names) {
			descriptor.Name = names[offset]
		}
		descriptors = append(descriptors, descriptor)
	}
	return descriptors, nil
}

// classify inspects fd. Failures classify as KindUnknown.
func classify(fd int) Kind {
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return KindUnknown
	}
	switch stat.Mode & unix.S_IFMT {
	case unix.S_IFIFO:
		return KindFIFO
	case unix.S_IFREG:
		return KindFile
	case unix.S_IFSOCK:
	default:
		return KindUnknown
	}

	address, err := unix.Getsockname(fd)
	if err != nil {
		return KindUnknown
	}
	switch address.(type) {
	case *unix.SockaddrInet4, *unix.SockaddrInet6:
		return KindInet
	case *unix.SockaddrUnix:
		return KindUnix
	default:
		return KindUnknown
	}
}
