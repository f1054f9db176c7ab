// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package memfd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// State is the lifecycle position of a File.
type State int

const (
	// Writable files were just created and hold no data.
	Writable State = iota
	// Written files have had data copied in but can still change.
	Written
	// Sealed files can no longer shrink, grow, be written, or gain
	// further seals.
	Sealed
	// Released files have handed their descriptor to another owner.
	Released
)

func (s State) String() string {
	switch s {
	case Writable:
		return "writable"
	case Written:
		return "written"
	case Sealed:
		return "sealed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AllSeals is the seal set applied by Seal.
const AllSeals = unix.F_SEAL_SHRINK | unix.F_SEAL_GROW | unix.F_SEAL_WRITE | unix.F_SEAL_SEAL

var (
	// ErrSealed is returned when writing to a sealed file.
	ErrSealed = errors.New("memfd: file is sealed")

	// ErrNotSealed is returned by Release before Seal has succeeded.
	ErrNotSealed = errors.New("memfd: file is not sealed")

	// ErrReleased is returned when a file is used after Release.
	ErrReleased = errors.New("memfd: file was released")
)

// File is an anonymous memory file with sealing enabled. It is not safe
// to share a File between goroutines while it is being written.
type File struct {
	mu    sync.Mutex
	file  *os.File
	state State
}

// Create makes a new anonymous memory file. name only shows up in
// /proc/<pid>/fd link targets ("/memfd:<name>") and need not be unique.
// Failure means the kernel facility is unavailable or the process is
// out of descriptors.
func Create(name string) (*File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_ALLOW_SEALING|unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd: create %q: %w", name, os.NewSyscallError("memfd_create", err))
	}
	return &File{file: os.NewFile(uintptr(fd), "memfd:"+name)}, nil
}

// Write appends data to the file. Short writes are retried until every
// byte is written or an I/O error occurs; the returned count is the
// number of bytes actually stored.
func (f *File) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Sealed:
		return 0, ErrSealed
	case Released:
		return 0, ErrReleased
	}

	written := 0
	for written < len(data) {
		n, err := f.file.Write(data[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("memfd: write %s: %w", f.file.Name(), err)
		}
		if n == 0 {
			return written, fmt.Errorf("memfd: write %s: %w", f.file.Name(), io.ErrShortWrite)
		}
	}
	f.state = Written
	return written, nil
}

// Seal applies AllSeals. It must be called after the last Write and
// before the descriptor is shared.
func (f *File) Seal() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Sealed:
		return nil
	case Released:
		return ErrReleased
	}

	if _, err := unix.FcntlInt(f.file.Fd(), unix.F_ADD_SEALS, AllSeals); err != nil {
		return fmt.Errorf("memfd: seal %s: %w", f.file.Name(), os.NewSyscallError("fcntl", err))
	}
	f.state = Sealed
	return nil
}

// Seals returns the seal bits currently set on the file.
func (f *File) Seals() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Released {
		return 0, ErrReleased
	}
	seals, err := unix.FcntlInt(f.file.Fd(), unix.F_GET_SEALS, 0)
	if err != nil {
		return 0, os.NewSyscallError("fcntl", err)
	}
	return seals, nil
}

// State reports the file's lifecycle position.
func (f *File) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Size returns the current length of the file contents.
func (f *File) Size() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Released {
		return 0, ErrReleased
	}
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Release transfers the sealed descriptor to the caller, who becomes
// responsible for closing it. The File is unusable afterwards and its
// Close is a no-op.
func (f *File) Release() (*os.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Released:
		return nil, ErrReleased
	case Sealed:
	default:
		return nil, ErrNotSealed
	}

	file := f.file
	f.file = nil
	f.state = Released
	return file, nil
}

// Close closes the descriptor unless it has been released.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Released {
		return nil
	}
	f.state = Released
	return f.file.Close()
}

// New creates, fills, and seals a memory file in one step. On any error
// the file is closed.
func New(name string, data []byte) (*File, error) {
	file, err := Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Seal(); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}
