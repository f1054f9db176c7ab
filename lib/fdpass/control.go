// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package fdpass

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fdSize is the width of one descriptor inside SCM_RIGHTS data. The
// kernel ABI uses a C int regardless of the Go int width.
const fdSize = 4

// cmsgAlignment is the alignment Linux requires for control-message
// headers and their payloads (sizeof(long)).
const cmsgAlignment = unsafe.Sizeof(uintptr(0))

// alignedHeaderSize is CMSG_ALIGN(sizeof(struct cmsghdr)), the offset of
// the payload within a control message.
const alignedHeaderSize = (unsafe.Sizeof(unix.Cmsghdr{}) + cmsgAlignment - 1) &^ (cmsgAlignment - 1)

// oneDescriptorSpace is CMSG_SPACE(sizeof(int)) computed at compile time.
const oneDescriptorSpace = alignedHeaderSize + (fdSize+cmsgAlignment-1)&^(cmsgAlignment-1)

// inlineCapacity is the control buffer size used for the common
// single-descriptor case without a heap allocation per word.
const inlineCapacity = 64

// Compile-time check: the build fails (constant overflow) if
// inlineCapacity cannot hold one descriptor on this platform.
var _ [inlineCapacity - oneDescriptorSpace]struct{}

// ControlSpace returns the number of bytes a control buffer needs to
// carry count descriptors in a single SCM_RIGHTS message.
func ControlSpace(count int) int {
	return unix.CmsgSpace(count * fdSize)
}

// BuildRights returns a control-message buffer holding fds as a single
// SOL_SOCKET/SCM_RIGHTS message. The buffer length is exactly
// ControlSpace(len(fds)) and its backing storage is word-aligned, as
// sendmsg requires for msg_control. An empty fds returns nil: a message
// with no descriptors carries no control data at all.
func BuildRights(fds ...int) []byte {
	if len(fds) == 0 {
		return nil
	}

	space := ControlSpace(len(fds))
	buffer := alignedBuffer(space)

	header := (*unix.Cmsghdr)(unsafe.Pointer(&buffer[0]))
	header.Level = unix.SOL_SOCKET
	header.Type = unix.SCM_RIGHTS
	header.SetLen(unix.CmsgLen(len(fds) * fdSize))

	data := buffer[alignedHeaderSize:]
	for index, fd := range fds {
		binary.NativeEndian.PutUint32(data[index*fdSize:], uint32(int32(fd)))
	}
	return buffer
}

// alignedBuffer returns a zeroed byte slice of length size whose first
// byte sits on a cmsghdr-compatible boundary. Sizes that fit the inline
// capacity share one fixed-size array shape; larger ones are rounded up
// to whole words.
func alignedBuffer(size int) []byte {
	if size <= inlineCapacity {
		var words [inlineCapacity / int(cmsgAlignment)]uintptr
		return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), inlineCapacity)[:size:size]
	}
	words := make([]uintptr, (size+int(cmsgAlignment)-1)/int(cmsgAlignment))
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*int(cmsgAlignment))[:size:size]
}
