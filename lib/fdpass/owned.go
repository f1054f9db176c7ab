// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package fdpass

import (
	"errors"
	"os"
	"sync"
	"syscall"
)

// ErrConsumed is returned when an Owned descriptor is used after it has
// been handed to the kernel or closed.
var ErrConsumed = errors.New("fdpass: descriptor already consumed")

// Owned is a descriptor held by exactly one owner. It starts out owned
// locally and becomes consumed either by Close or by a successful
// SendOwned, after which the descriptor number is no longer valid in
// this process and every accessor reports ErrConsumed.
type Owned struct {
	mu       sync.Mutex
	file     *os.File
	consumed bool
}

// Own takes ownership of file. The caller must not use or close file
// directly afterwards.
func Own(file *os.File) *Owned {
	return &Owned{file: file}
}

// FD returns the descriptor number while the value is still owned.
func (o *Owned) FD() (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.consumed {
		return -1, ErrConsumed
	}
	return int(o.file.Fd()), nil
}

// Consumed reports whether ownership has already been given up.
func (o *Owned) Consumed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.consumed
}

// Close releases a descriptor that was never sent. Closing a consumed
// value is a no-op, so it is safe to defer Close before SendOwned.
func (o *Owned) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.consumed {
		return nil
	}
	o.consumed = true
	return o.file.Close()
}

// SendOwned sends every descriptor in owned to path as a single
// SCM_RIGHTS message and, only if the send succeeds, closes the local
// copies and marks them consumed. On failure the values stay owned and
// the caller remains responsible for closing them. Each value may appear
// at most once in owned.
func SendOwned(conn syscall.Conn, path string, owned ...*Owned) (int, error) {
	for _, o := range owned {
		o.mu.Lock()
		defer o.mu.Unlock()
	}

	fds := make([]int, 0, len(owned))
	for _, o := range owned {
		if o.consumed {
			return 0, ErrConsumed
		}
		fds = append(fds, int(o.file.Fd()))
	}

	sent, err := Send(conn, path, fds...)
	if err != nil {
		return 0, err
	}

	// The kernel now holds its own reference to each open file
	// description; the local descriptor is just a second handle.
	var closeErr error
	for _, o := range owned {
		o.consumed = true
		if err := o.file.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return sent, closeErr
}
