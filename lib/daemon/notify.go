// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package daemon

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/systemd/lib/fdpass"
)

// NotifySocketEnvironment names the manager's notification socket. A
// leading '@' selects the abstract namespace.
const NotifySocketEnvironment = "NOTIFY_SOCKET"

// Notify sends states to the service manager. It returns (false, nil)
// when $NOTIFY_SOCKET is not set, meaning the service was not started
// with notification support. With unsetEnv, $NOTIFY_SOCKET is removed so
// no further notifications are possible from this process or its
// children.
func Notify(unsetEnv bool, states ...State) (bool, error) {
	return NotifyWithFDs(unsetEnv, nil, states...)
}

// NotifyWithFDs is Notify with descriptors attached, for use with
// FDStore. The descriptors are duplicated into the manager; the caller
// still owns and must close its copies.
func NotifyWithFDs(unsetEnv bool, fds []int, states ...State) (bool, error) {
	path := os.Getenv(NotifySocketEnvironment)
	if unsetEnv {
		os.Unsetenv(NotifySocketEnvironment)
	}
	if path == "" {
		return false, nil
	}

	socket, err := fdpass.Socket()
	if err != nil {
		return false, fmt.Errorf("notify: %w", err)
	}
	defer socket.Close()

	payload := encodeStates(states)
	sent, err := fdpass.SendWithData(socket, path, payload, fds...)
	if err != nil {
		return false, fmt.Errorf("notify %s: %w", path, err)
	}
	if sent != len(payload) {
		return false, fmt.Errorf("notify %s: incomplete send, %d of %d bytes", path, sent, len(payload))
	}
	return true, nil
}
