// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package fdpass

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// maxPathLength is the size of sun_path in sockaddr_un. A path must
// leave room for the terminating NUL byte.
var maxPathLength = len(unix.RawSockaddrUnix{}.Path)

// Address validates path as a Unix-domain socket destination and returns
// the sockaddr for it. A leading '@' selects the Linux abstract
// namespace. Paths that do not fit sun_path (including the terminator)
// fail with ENAMETOOLONG before any system call is made.
func Address(path string) (*unix.SockaddrUnix, error) {
	if path == "" {
		return nil, fmt.Errorf("fdpass: empty socket path: %w", unix.EINVAL)
	}
	if len(path) >= maxPathLength {
		return nil, &os.PathError{Op: "sendmsg", Path: path, Err: unix.ENAMETOOLONG}
	}
	return &unix.SockaddrUnix{Name: path}, nil
}

// Socket returns an unbound, unconnected AF_UNIX datagram socket in
// blocking mode, owned by the caller. It is the sending side for Send
// and SendWithData.
func Socket() (*os.File, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	return os.NewFile(uintptr(fd), "fdpass-socket"), nil
}

// Send delivers fds to the datagram socket bound at path using conn's
// descriptor. The message has a zero-length body; the descriptors travel
// as one SCM_RIGHTS control message. It returns the number of body bytes
// the kernel accepted, which is always zero on success.
//
// conn may be a *net.UnixConn or an *os.File wrapping an unconnected
// datagram socket. System call failures are returned as *os.SyscallError
// wrapping the errno, so errors.Is(err, unix.EMSGSIZE) and friends work.
// There is no retry.
func Send(conn syscall.Conn, path string, fds ...int) (int, error) {
	return sendmsg(conn, path, nil, BuildRights(fds...))
}

// SendWithData is Send with a non-empty message body. It is used where
// the receiving protocol expects the descriptors to accompany a payload,
// such as sd_notify FDSTORE messages.
func SendWithData(conn syscall.Conn, path string, data []byte, fds ...int) (int, error) {
	return sendmsg(conn, path, data, BuildRights(fds...))
}

func sendmsg(conn syscall.Conn, path string, data, control []byte) (int, error) {
	address, err := Address(path)
	if err != nil {
		return 0, err
	}

	rawConn, err := conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("fdpass: raw socket: %w", err)
	}

	var sent int
	var sendErr error
	err = rawConn.Write(func(fd uintptr) bool {
		sent, sendErr = unix.SendmsgN(int(fd), data, control, address, unix.MSG_NOSIGNAL)
		// A nonblocking socket (net.UnixConn) reports EAGAIN when the
		// peer queue is full; returning false parks on the poller.
		return !errors.Is(sendErr, unix.EAGAIN)
	})
	if err != nil {
		return 0, fmt.Errorf("fdpass: raw socket write: %w", err)
	}
	if sendErr != nil {
		return 0, os.NewSyscallError("sendmsg", sendErr)
	}
	return sent, nil
}
