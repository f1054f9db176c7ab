// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/systemd/lib/clock"
	"github.com/bureau-foundation/systemd/lib/daemon"
	"github.com/bureau-foundation/systemd/lib/process"
)

func notifyCmd(args []string, std streams, logger *slog.Logger) error {
	var (
		ready, reloading, stopping, watchdog bool
		status                               string
		mainPID, errno                       int
		unsetEnv, keepalive                  bool
	)
	flagSet := pflag.NewFlagSet("notify", pflag.ContinueOnError)
	flagSet.SetOutput(std.stderr)
	flagSet.BoolVar(&ready, "ready", false, "send READY=1")
	flagSet.BoolVar(&reloading, "reloading", false, "send RELOADING=1")
	flagSet.BoolVar(&stopping, "stopping", false, "send STOPPING=1")
	flagSet.BoolVar(&watchdog, "watchdog", false, "send WATCHDOG=1")
	flagSet.StringVar(&status, "status", "", "send STATUS=<text>")
	flagSet.IntVar(&mainPID, "pid", 0, "send MAINPID=<pid>")
	flagSet.IntVar(&errno, "errno", 0, "send ERRNO=<n>")
	flagSet.BoolVar(&unsetEnv, "unset-env", false, "remove $NOTIFY_SOCKET after sending")
	flagSet.BoolVar(&keepalive, "keepalive", false, "then send WATCHDOG=1 every half $WATCHDOG_USEC until interrupted")
	if err := flagSet.Parse(args); err != nil {
		return flagError(err)
	}

	var states []daemon.State
	if ready {
		states = append(states, daemon.Ready)
	}
	if reloading {
		states = append(states, daemon.Reloading)
	}
	if stopping {
		states = append(states, daemon.Stopping)
	}
	if watchdog {
		states = append(states, daemon.Watchdog)
	}
	if flagSet.Changed("status") {
		states = append(states, daemon.Status(status))
	}
	if flagSet.Changed("pid") {
		states = append(states, daemon.MainPID(mainPID))
	}
	if flagSet.Changed("errno") {
		states = append(states, daemon.Errno(errno))
	}
	for _, assignment := range flagSet.Args() {
		if !strings.Contains(assignment, "=") {
			return process.Usage(fmt.Errorf("notify: %q is not a KEY=VALUE assignment", assignment))
		}
		states = append(states, daemon.Custom(assignment))
	}
	if len(states) == 0 && !keepalive {
		return process.Usage(errors.New("notify: nothing to send"))
	}
	if keepalive && unsetEnv {
		return process.Usage(errors.New("notify: --keepalive needs $NOTIFY_SOCKET and cannot be combined with --unset-env"))
	}

	if len(states) > 0 {
		sent, err := daemon.Notify(unsetEnv, states...)
		if err != nil {
			return err
		}
		if !sent {
			return fmt.Errorf("notify: $%s is not set; not running under a service manager", daemon.NotifySocketEnvironment)
		}
		logger.Debug("notification sent", "states", len(states))
	}

	if !keepalive {
		return nil
	}
	interval, enabled := daemon.WatchdogEnabled(false)
	if !enabled {
		return errors.New("notify: --keepalive: watchdog is not enabled for this process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("sending watchdog keep-alives", "interval", interval)
	err := daemon.RunWatchdog(ctx, clock.Real(), interval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
