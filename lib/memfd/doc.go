// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memfd creates anonymous memory-backed files that are written
// once and then sealed.
//
// A [File] moves through three states. [Create] returns it Writable.
// [File.Write] copies data in, fully, moving it to Written. [File.Seal]
// applies F_SEAL_SHRINK, F_SEAL_GROW, F_SEAL_WRITE and F_SEAL_SEAL in one
// fcntl call, moving it to Sealed. From then on no process, including
// this one, can change the contents or size, so a receiver may mmap or
// read the file without racing the writer.
//
// [File.Release] hands the underlying *os.File to the next owner and is
// only permitted on a sealed file. The journal transport wraps the
// released file in an fdpass.Owned and sends it as SCM_RIGHTS data.
//
// Depends on golang.org/x/sys/unix. Linux only.
package memfd
