// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package daemon implements the service side of the systemd service
// manager protocols that do not go through D-Bus.
//
// [Notify] and [NotifyWithFDs] speak the sd_notify datagram protocol
// on $NOTIFY_SOCKET: a newline-separated list of [State] assignments,
// optionally accompanied by descriptors for the manager's file
// descriptor store. Descriptors travel through lib/fdpass, the same
// SCM_RIGHTS path the journal transport uses for sealed memfds.
//
// [WatchdogEnabled] reads the watchdog interval the manager expects
// keep-alive notifications within. [Listeners] collects sockets passed
// by socket activation. [Credentials] opens the unit's credential
// directory.
//
// All entry points that read the environment accept an unsetEnv flag.
// When true the variables are removed before returning, so child
// processes do not inherit them. Nothing here logs.
package daemon
