// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/systemd/lib/clock"
)

// ErrNotifyUnavailable is returned by RunWatchdog when $NOTIFY_SOCKET
// is not set.
var ErrNotifyUnavailable = errors.New("daemon: $NOTIFY_SOCKET is not set")

// RunWatchdog sends Watchdog every half interval until ctx is done,
// then returns ctx.Err(). interval is normally the value from
// WatchdogEnabled. A failed send ends the loop with that error: a
// service that cannot ping should let the manager restart it.
func RunWatchdog(ctx context.Context, clk clock.Clock, interval time.Duration) error {
	period := interval / 2
	if period <= 0 {
		return fmt.Errorf("daemon: watchdog interval %v too short", interval)
	}

	ticker := clk.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sent, err := Notify(false, Watchdog)
			if err != nil {
				return fmt.Errorf("watchdog ping: %w", err)
			}
			if !sent {
				return ErrNotifyUnavailable
			}
		}
	}
}
