// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package fdpass

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/systemd/lib/testutil"
)

func TestInlineCapacityHoldsOneDescriptor(t *testing.T) {
	space := unix.CmsgSpace(fdSize)
	if space > inlineCapacity {
		t.Fatalf("CMSG_SPACE(sizeof(int)) = %d, exceeds inline capacity %d", space, inlineCapacity)
	}
	if int(oneDescriptorSpace) != space {
		t.Errorf("compile-time one descriptor space = %d, want %d", oneDescriptorSpace, space)
	}
	if int(alignedHeaderSize) != unix.CmsgLen(0) {
		t.Errorf("aligned header size = %d, want CMSG_LEN(0) = %d", alignedHeaderSize, unix.CmsgLen(0))
	}
}

func TestControlSpace(t *testing.T) {
	for count := 0; count <= 32; count++ {
		if got, want := ControlSpace(count), unix.CmsgSpace(count*4); got != want {
			t.Errorf("ControlSpace(%d) = %d, want %d", count, got, want)
		}
	}
}

func TestBuildRights(t *testing.T) {
	tests := []struct {
		name string
		fds  []int
	}{
		{name: "single descriptor", fds: []int{7}},
		{name: "two descriptors", fds: []int{3, 4}},
		{name: "odd count", fds: []int{10, 11, 12}},
		{name: "beyond inline capacity", fds: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buffer := BuildRights(test.fds...)

			if len(buffer) != ControlSpace(len(test.fds)) {
				t.Fatalf("len(buffer) = %d, want %d", len(buffer), ControlSpace(len(test.fds)))
			}
			if address := uintptr(unsafe.Pointer(&buffer[0])); address%cmsgAlignment != 0 {
				t.Errorf("buffer address %#x not aligned to %d", address, cmsgAlignment)
			}

			// The kernel-compatible reference layout from x/sys.
			if want := unix.UnixRights(test.fds...); !bytes.Equal(buffer, want) {
				t.Errorf("BuildRights = %x, want %x", buffer, want)
			}

			messages, err := unix.ParseSocketControlMessage(buffer)
			if err != nil {
				t.Fatalf("ParseSocketControlMessage: %v", err)
			}
			if len(messages) != 1 {
				t.Fatalf("got %d control messages, want 1", len(messages))
			}
			if messages[0].Header.Level != unix.SOL_SOCKET || messages[0].Header.Type != unix.SCM_RIGHTS {
				t.Errorf("header level/type = %d/%d, want SOL_SOCKET/SCM_RIGHTS",
					messages[0].Header.Level, messages[0].Header.Type)
			}
			got, err := unix.ParseUnixRights(&messages[0])
			if err != nil {
				t.Fatalf("ParseUnixRights: %v", err)
			}
			if len(got) != len(test.fds) {
				t.Fatalf("parsed %d descriptors, want %d", len(got), len(test.fds))
			}
			for index := range got {
				if got[index] != test.fds[index] {
					t.Errorf("descriptor %d = %d, want %d", index, got[index], test.fds[index])
				}
			}
		})
	}
}

func TestBuildRights_Empty(t *testing.T) {
	if buffer := BuildRights(); buffer != nil {
		t.Errorf("BuildRights() = %x, want nil", buffer)
	}
}

// refusingConn fails the test if Send reaches the system call layer.
type refusingConn struct {
	t *testing.T
}

func (c refusingConn) SyscallConn() (syscall.RawConn, error) {
	c.t.Fatal("SyscallConn called for a path that should have been rejected")
	return nil, nil
}

func TestSend_PathTooLong(t *testing.T) {
	path := "/" + strings.Repeat("a", maxPathLength-1)
	_, err := Send(refusingConn{t}, path, 0)
	if !errors.Is(err, unix.ENAMETOOLONG) {
		t.Fatalf("Send with %d-byte path: err = %v, want ENAMETOOLONG", len(path), err)
	}
}

func TestAddress(t *testing.T) {
	if _, err := Address(""); !errors.Is(err, unix.EINVAL) {
		t.Errorf("Address(\"\") err = %v, want EINVAL", err)
	}

	longest := "/" + strings.Repeat("b", maxPathLength-2)
	address, err := Address(longest)
	if err != nil {
		t.Fatalf("Address(%d bytes) failed: %v", len(longest), err)
	}
	if address.Name != longest {
		t.Errorf("address.Name = %q, want %q", address.Name, longest)
	}
}

// unboundSocket returns an unconnected, unbound datagram socket.
func unboundSocket(t *testing.T) *os.File {
	t.Helper()
	file, err := Socket()
	if err != nil {
		t.Fatalf("Socket: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	return file
}

// listen binds a datagram receiver in a short socket directory.
func listen(t *testing.T) (*net.UnixConn, string) {
	t.Helper()
	path := filepath.Join(testutil.SocketDir(t), "receiver.sock")
	receiver, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("listen %s: %v", path, err)
	}
	t.Cleanup(func() { receiver.Close() })
	return receiver, path
}

// receiveRights reads one datagram and returns its body and descriptors.
func receiveRights(t *testing.T, receiver *net.UnixConn) ([]byte, []*os.File) {
	t.Helper()
	body := make([]byte, 4096)
	control := make([]byte, ControlSpace(4))
	n, controlLength, _, _, err := receiver.ReadMsgUnix(body, control)
	if err != nil {
		t.Fatalf("ReadMsgUnix: %v", err)
	}

	messages, err := unix.ParseSocketControlMessage(control[:controlLength])
	if err != nil {
		t.Fatalf("ParseSocketControlMessage: %v", err)
	}
	var files []*os.File
	for index := range messages {
		fds, err := unix.ParseUnixRights(&messages[index])
		if err != nil {
			t.Fatalf("ParseUnixRights: %v", err)
		}
		for _, fd := range fds {
			file := os.NewFile(uintptr(fd), "received")
			t.Cleanup(func() { file.Close() })
			files = append(files, file)
		}
	}
	return body[:n], files
}

func TestSend_DeliversDescriptor(t *testing.T) {
	receiver, path := listen(t)
	sender := unboundSocket(t)

	pipeReader, pipeWriter, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer pipeReader.Close()
	defer pipeWriter.Close()

	sent, err := Send(sender, path, int(pipeWriter.Fd()))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 0 {
		t.Errorf("Send returned %d body bytes, want 0", sent)
	}

	body, files := receiveRights(t, receiver)
	if len(body) != 0 {
		t.Errorf("received body %q, want empty", body)
	}
	if len(files) != 1 {
		t.Fatalf("received %d descriptors, want 1", len(files))
	}

	// The received descriptor is the pipe's write end: data written
	// through it must come out of our read end.
	if _, err := files[0].Write([]byte("through the socket")); err != nil {
		t.Fatalf("write via received descriptor: %v", err)
	}
	pipeWriter.Close()
	files[0].Close()
	got, err := io.ReadAll(pipeReader)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	if string(got) != "through the socket" {
		t.Errorf("pipe contents = %q, want %q", got, "through the socket")
	}
}

func TestSendWithData(t *testing.T) {
	receiver, path := listen(t)
	sender, err := net.ListenUnixgram("unixgram", &net.UnixAddr{
		Name: filepath.Join(filepath.Dir(path), "sender.sock"),
		Net:  "unixgram",
	})
	if err != nil {
		t.Fatalf("listen sender: %v", err)
	}
	defer sender.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	defer devNull.Close()

	sent, err := SendWithData(sender, path, []byte("FDSTORE=1\n"), int(devNull.Fd()))
	if err != nil {
		t.Fatalf("SendWithData: %v", err)
	}
	if sent != len("FDSTORE=1\n") {
		t.Errorf("sent = %d, want %d", sent, len("FDSTORE=1\n"))
	}

	body, files := receiveRights(t, receiver)
	if string(body) != "FDSTORE=1\n" {
		t.Errorf("body = %q, want %q", body, "FDSTORE=1\n")
	}
	if len(files) != 1 {
		t.Errorf("received %d descriptors, want 1", len(files))
	}
}

func TestSend_MissingDestination(t *testing.T) {
	sender := unboundSocket(t)
	path := filepath.Join(testutil.SocketDir(t), "absent.sock")

	_, err := Send(sender, path, int(sender.Fd()))
	if err == nil {
		t.Fatal("expected error sending to a missing socket")
	}
	var syscallErr *os.SyscallError
	if !errors.As(err, &syscallErr) {
		t.Fatalf("err = %T (%v), want *os.SyscallError", err, err)
	}
	if !errors.Is(err, unix.ENOENT) {
		t.Errorf("err = %v, want ENOENT", err)
	}
}

func TestSendOwned_ConsumesOnSuccess(t *testing.T) {
	receiver, path := listen(t)
	sender := unboundSocket(t)

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	owned := Own(devNull)
	defer owned.Close()

	if _, err := SendOwned(sender, path, owned); err != nil {
		t.Fatalf("SendOwned: %v", err)
	}
	if !owned.Consumed() {
		t.Error("descriptor still owned after successful send")
	}
	if _, err := owned.FD(); !errors.Is(err, ErrConsumed) {
		t.Errorf("FD() after send: err = %v, want ErrConsumed", err)
	}
	if _, err := SendOwned(sender, path, owned); !errors.Is(err, ErrConsumed) {
		t.Errorf("second SendOwned: err = %v, want ErrConsumed", err)
	}
	if err := owned.Close(); err != nil {
		t.Errorf("Close after consume: %v", err)
	}

	_, files := receiveRights(t, receiver)
	if len(files) != 1 {
		t.Fatalf("received %d descriptors, want 1", len(files))
	}
}

func TestSendOwned_KeepsOwnershipOnFailure(t *testing.T) {
	sender := unboundSocket(t)
	path := filepath.Join(testutil.SocketDir(t), "absent.sock")

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	owned := Own(devNull)

	if _, err := SendOwned(sender, path, owned); err == nil {
		t.Fatal("expected SendOwned to fail for a missing socket")
	}
	if owned.Consumed() {
		t.Fatal("descriptor consumed although the send failed")
	}
	if _, err := owned.FD(); err != nil {
		t.Errorf("FD() after failed send: %v", err)
	}
	if err := owned.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !owned.Consumed() {
		t.Error("Close did not consume the descriptor")
	}
}
