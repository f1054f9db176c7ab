// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is a syslog severity. Lower values are more severe.
type Priority uint8

const (
	Emergency Priority = iota // system is unusable
	Alert                     // action must be taken immediately
	Critical                  // critical condition
	Error                     // error condition
	Warning                   // warning condition
	Notice                    // normal but significant condition
	Info                      // informational message
	Debug                     // debug message
)

var priorityNames = [...]string{
	Emergency: "emerg",
	Alert:     "alert",
	Critical:  "crit",
	Error:     "err",
	Warning:   "warning",
	Notice:    "notice",
	Info:      "info",
	Debug:     "debug",
}

// String returns the syslog keyword for p, as journalctl -p accepts.
func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("Priority(%d)", uint8(p))
}

// Valid reports whether p is one of the eight syslog severities.
func (p Priority) Valid() bool {
	return p <= Debug
}

// ParsePriority accepts a syslog keyword ("err", "warning", ...), a few
// common aliases ("error", "warn", "emergency", "critical", "panic"), or
// a single digit 0-7.
func ParsePriority(text string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if value, err := strconv.ParseUint(normalized, 10, 8); err == nil {
		if Priority(value).Valid() {
			return Priority(value), nil
		}
		return 0, fmt.Errorf("priority %q out of range 0-7", text)
	}

	switch normalized {
	case "emergency", "panic":
		return Emergency, nil
	case "critical":
		return Critical, nil
	case "error":
		return Error, nil
	case "warn":
		return Warning, nil
	}
	for value, name := range priorityNames {
		if name == normalized {
			return Priority(value), nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", text)
}
