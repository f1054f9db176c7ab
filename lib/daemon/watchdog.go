// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"os"
	"strconv"
	"time"
)

const (
	watchdogUSecEnvironment = "WATCHDOG_USEC"
	watchdogPIDEnvironment  = "WATCHDOG_PID"
)

// WatchdogEnabled returns the interval within which the manager expects
// a Watchdog notification, and whether the watchdog applies to this
// process. It is disabled when $WATCHDOG_USEC is unset, unparsable, or
// zero, and when $WATCHDOG_PID names a different process. Services
// usually ping at half the interval.
func WatchdogEnabled(unsetEnv bool) (time.Duration, bool) {
	usecText, usecSet := os.LookupEnv(watchdogUSecEnvironment)
	pidText, pidSet := os.LookupEnv(watchdogPIDEnvironment)
	if unsetEnv {
		os.Unsetenv(watchdogUSecEnvironment)
		os.Unsetenv(watchdogPIDEnvironment)
	}

	if !usecSet {
		return 0, false
	}
	usec, err := strconv.ParseUint(usecText, 10, 63)
	if err != nil || usec == 0 || usec > uint64(time.Duration(1<<63-1)/time.Microsecond) {
		return 0, false
	}
	interval := time.Duration(usec) * time.Microsecond

	if !pidSet {
		return interval, true
	}
	pid, err := strconv.Atoi(pidText)
	if err != nil || pid != os.Getpid() {
		return 0, false
	}
	return interval, true
}
