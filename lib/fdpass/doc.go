// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fdpass sends open file descriptors to a named Unix-domain
// datagram endpoint as SCM_RIGHTS ancillary data.
//
// The control-message layout is the only unsafe memory construction in
// the module and it lives entirely in [BuildRights]: the buffer is sized
// from the descriptor count with [ControlSpace], backed by word-aligned
// storage, and carries exactly one SOL_SOCKET/SCM_RIGHTS message. Callers
// never touch raw cmsghdr bytes.
//
// [Send] issues a single sendmsg with a zero-length body. It knows nothing
// about what the descriptors represent; the journal transport uses it to
// hand over a sealed memfd, and lib/daemon uses the same buffer builder
// for FDSTORE notifications.
//
// [Owned] models the single-owner handoff of a descriptor from this
// process to the kernel. A descriptor passed through [SendOwned] is
// closed locally once the send succeeds, and any further use reports
// [ErrConsumed] instead of touching a recycled descriptor number.
//
// Depends on golang.org/x/sys/unix. Linux only.
package fdpass
