// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"strconv"
	"strings"
)

// State is one sd_notify assignment in KEY=VALUE form. See
// sd_notify(3) for the meaning of each key.
type State string

const (
	// Ready tells the manager that startup is finished.
	Ready State = "READY=1"

	// Reloading tells the manager that configuration is being reloaded.
	// Send Ready when the reload completes.
	Reloading State = "RELOADING=1"

	// Stopping tells the manager that shutdown has begun.
	Stopping State = "STOPPING=1"

	// Watchdog is the keep-alive ping.
	Watchdog State = "WATCHDOG=1"

	// WatchdogTrigger asks the manager to act as if the watchdog had
	// expired.
	WatchdogTrigger State = "WATCHDOG=trigger"

	// FDStore stores the descriptors sent with NotifyWithFDs in the
	// manager's file descriptor store.
	FDStore State = "FDSTORE=1"

	// FDStoreRemove drops stored descriptors. Combine with FDName.
	FDStoreRemove State = "FDSTOREREMOVE=1"

	// FDPollDisable stops the manager from polling stored descriptors
	// for errors. Combine with FDStore.
	FDPollDisable State = "FDPOLL=0"
)

// Status is a free-form status line shown by systemctl status.
func Status(status string) State {
	return State("STATUS=" + status)
}

// Errno reports a failure as an errno-style code.
func Errno(errno int) State {
	return State("ERRNO=" + strconv.Itoa(errno))
}

// BusError reports a failure as a D-Bus error name.
func BusError(name string) State {
	return State("BUSERROR=" + name)
}

// MainPID tells the manager which process is the service's main
// process.
func MainPID(pid int) State {
	return State("MAINPID=" + strconv.Itoa(pid))
}

// FDName names the descriptors in an FDStore or FDStoreRemove message.
func FDName(name string) State {
	return State("FDNAME=" + name)
}

// WatchdogUSec changes the watchdog interval at runtime.
func WatchdogUSec(usec uint64) State {
	return State("WATCHDOG_USEC=" + strconv.FormatUint(usec, 10))
}

// Custom passes an assignment this package has no constructor for.
func Custom(assignment string) State {
	return State(assignment)
}

// encodeStates renders states as the sd_notify payload: one assignment
// per line, each terminated by a newline.
func encodeStates(states []State) []byte {
	var builder strings.Builder
	for _, state := range states {
		builder.WriteString(string(state))
		builder.WriteByte('\n')
	}
	return []byte(builder.String())
}
