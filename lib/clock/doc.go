// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by periodic
// service-manager work such as watchdog keep-alives.
//
// Production code passes Real(). Tests pass Fake(), whose time moves
// only when Advance is called, and use WaitForTickers to know that the
// goroutine under test has started its ticker before advancing:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go daemon.RunWatchdog(ctx, c, interval)
//	c.WaitForTickers(1)
//	c.Advance(interval / 2)
package clock
