// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/systemd/lib/daemon"
	"github.com/bureau-foundation/systemd/lib/journal"
	"github.com/bureau-foundation/systemd/lib/journal/journaltest"
	"github.com/bureau-foundation/systemd/lib/process"
	"github.com/bureau-foundation/systemd/lib/testutil"
)

// testStreams returns streams reading stdin from input and capturing
// stdout and stderr.
func testStreams(input string) (streams, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return streams{stdin: strings.NewReader(input), stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func TestRun_NoCommand(t *testing.T) {
	std, _, stderr := testStreams("")
	err := run(nil, std)
	if process.Code(err) != process.ExitUsage {
		t.Errorf("run() exit code = %d, want %d", process.Code(err), process.ExitUsage)
	}
	if !strings.Contains(stderr.String(), "USAGE") {
		t.Error("usage not printed to stderr")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	std, _, _ := testStreams("")
	err := run([]string{"frobnicate"}, std)
	if process.Code(err) != process.ExitUsage || !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("run(frobnicate) = %v, want usage error naming the command", err)
	}
}

func TestRun_Version(t *testing.T) {
	std, stdout, _ := testStreams("")
	if err := run([]string{"version"}, std); err != nil {
		t.Fatalf("run(version) failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "bureau-journal ") {
		t.Errorf("version output = %q", stdout.String())
	}
}

func TestSend(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)
	std, _, _ := testStreams("")

	err := run([]string{"send", "--socket", receiver.Path(), "-p", "warning", "-t", "cli-test",
		"-f", "UNIT_ROLE=worker", "disk", "nearly", "full"}, std)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	entry := receiver.Next(t)
	expect := map[string]string{
		"PRIORITY":          "4",
		"MESSAGE":           "disk nearly full",
		"SYSLOG_IDENTIFIER": "cli-test",
		"UNIT_ROLE":         "worker",
	}
	for name, want := range expect {
		if got, _ := entry.Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestSend_ConfigFile(t *testing.T) {
	receiver := journaltest.NewReceiver(t)
	configPath := filepath.Join(t.TempDir(), "journal.yaml")
	content := "identifier: from-config\npriority: crit\nsocket_path: " + receiver.Path() +
		"\nfields:\n  - name: DEPLOYMENT\n    value: blue\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BUREAU_JOURNAL_CONFIG", configPath)

	std, _, _ := testStreams("")
	if err := run([]string{"send", "-p", "debug", "configured"}, std); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	entry := receiver.Next(t)
	if got, _ := entry.Get("PRIORITY"); got != "7" {
		t.Errorf("PRIORITY = %q, want flag to override config", got)
	}
	if got, _ := entry.Get("SYSLOG_IDENTIFIER"); got != "from-config" {
		t.Errorf("SYSLOG_IDENTIFIER = %q, want %q", got, "from-config")
	}
	if got, _ := entry.Get("DEPLOYMENT"); got != "blue" {
		t.Errorf("DEPLOYMENT = %q, want %q", got, "blue")
	}
}

func TestSend_Errors(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no message", []string{"send", "--socket", receiver.Path()}, process.ExitUsage},
		{"bad field syntax", []string{"send", "--socket", receiver.Path(), "-f", "NOEQUALS", "x"}, process.ExitUsage},
		{"invalid field name", []string{"send", "--socket", receiver.Path(), "-f", "lower=x", "x"}, process.ExitUsage},
		{"bad priority", []string{"send", "--socket", receiver.Path(), "-p", "loud", "x"}, process.ExitUsage},
		{"unknown flag", []string{"send", "--frobnicate", "x"}, process.ExitUsage},
		{"missing socket", []string{"send", "--socket", filepath.Join(testutil.SocketDir(t), "absent.sock"), "x"}, process.ExitFailure},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			std, _, _ := testStreams("")
			err := run(test.args, std)
			if got := process.Code(err); got != test.code {
				t.Errorf("exit code = %d (%v), want %d", got, err, test.code)
			}
		})
	}
	if receiver.Pending() {
		t.Error("a failing invocation delivered a record")
	}
}

func TestSend_Help(t *testing.T) {
	std, _, stderr := testStreams("")
	if err := run([]string{"send", "--help"}, std); err != nil {
		t.Errorf("send --help = %v, want nil", err)
	}
	if !strings.Contains(stderr.String(), "--priority") {
		t.Errorf("send --help did not list flags: %q", stderr.String())
	}
}

func TestCat_Lines(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)
	std, _, _ := testStreams("first line\r\nsecond line\n\nlast without newline")

	if err := run([]string{"cat", "--socket", receiver.Path(), "-t", "cat-test"}, std); err != nil {
		t.Fatalf("cat failed: %v", err)
	}

	for _, want := range []string{"first line", "second line", "", "last without newline"} {
		entry := receiver.Next(t)
		if got, _ := entry.Get("MESSAGE"); got != want {
			t.Errorf("MESSAGE = %q, want %q", got, want)
		}
		if got, _ := entry.Get("SYSLOG_IDENTIFIER"); got != "cat-test" {
			t.Errorf("SYSLOG_IDENTIFIER = %q, want %q", got, "cat-test")
		}
	}
}

func TestCat_WholeLargeInput(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)
	input := strings.Repeat("0123456789abcdef\n", 1<<16)
	std, _, _ := testStreams(input)

	if err := run([]string{"cat", "--whole", "--socket", receiver.Path()}, std); err != nil {
		t.Fatalf("cat --whole failed: %v", err)
	}

	entry := receiver.Next(t)
	if !entry.ViaMemfd {
		t.Error("1 MiB record did not use the memfd path")
	}
	if got, _ := entry.Get("MESSAGE"); got != input {
		t.Errorf("MESSAGE length = %d, want %d", len(got), len(input))
	}
}

func writeCompressed(t *testing.T, path string, data []byte) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	switch filepath.Ext(path) {
	case ".zst":
		encoder, err := zstd.NewWriter(file)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		if _, err := encoder.Write(data); err != nil {
			t.Fatalf("zstd write: %v", err)
		}
		if err := encoder.Close(); err != nil {
			t.Fatalf("zstd close: %v", err)
		}
	case ".lz4":
		encoder := lz4.NewWriter(file)
		if _, err := encoder.Write(data); err != nil {
			t.Fatalf("lz4 write: %v", err)
		}
		if err := encoder.Close(); err != nil {
			t.Fatalf("lz4 close: %v", err)
		}
	default:
		if _, err := file.Write(data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestCat_CompressedFiles(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)
	directory := t.TempDir()

	for _, name := range []string{"plain.log", "build.log.zst", "build.log.lz4"} {
		path := filepath.Join(directory, name)
		writeCompressed(t, path, []byte("from "+name+"\nsecond\n"))

		std, _, _ := testStreams("stdin must not be read")
		if err := run([]string{"cat", "--socket", receiver.Path(), "--file", path}, std); err != nil {
			t.Fatalf("cat --file %s failed: %v", name, err)
		}
		for _, want := range []string{"from " + name, "second"} {
			if got, _ := receiver.Next(t).Get("MESSAGE"); got != want {
				t.Errorf("%s: MESSAGE = %q, want %q", name, got, want)
			}
		}
	}

	std, _, _ := testStreams("")
	if err := run([]string{"cat", "--socket", receiver.Path(), "--file", filepath.Join(directory, "missing.zst")}, std); err == nil {
		t.Error("cat of a missing file succeeded")
	}
}

func TestCat_TerminalWarning(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	receiver := journaltest.NewReceiver(t)
	std, _, stderr := testStreams("typed\n")
	std.stdinTerminal = true

	if err := run([]string{"cat", "--socket", receiver.Path()}, std); err != nil {
		t.Fatalf("cat failed: %v", err)
	}
	receiver.Next(t)
	if !strings.Contains(stderr.String(), "reading records from the terminal") {
		t.Errorf("no terminal warning in %q", stderr.String())
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Setenv("BUREAU_JOURNAL_CONFIG", "")
	std, stdout, _ := testStreams("")
	if err := run([]string{"encode", "-p", "err", "-t", "enc", "-f", "NOTE=two\nlines", "hello"}, std); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want := journal.Encode(journal.Error, "hello", []journal.Field{
		{Name: "SYSLOG_IDENTIFIER", Value: "enc"},
		{Name: "NOTE", Value: "two\nlines"},
	})
	if !bytes.Equal(stdout.Bytes(), want) {
		t.Fatalf("encode output = %q, want %q", stdout.Bytes(), want)
	}

	decodeStd, decoded, _ := testStreams(stdout.String())
	if err := run([]string{"decode"}, decodeStd); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	wantText := "PRIORITY=3\nMESSAGE=hello\nSYSLOG_IDENTIFIER=enc\nNOTE=\"two\\nlines\"\n"
	if decoded.String() != wantText {
		t.Errorf("decode output = %q, want %q", decoded.String(), wantText)
	}

	badStd, _, _ := testStreams("NO_NEWLINE=x")
	if err := run([]string{"decode"}, badStd); err == nil {
		t.Error("decode of a malformed record succeeded")
	}
}

func TestNotify(t *testing.T) {
	path := filepath.Join(testutil.SocketDir(t), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()
	t.Setenv(daemon.NotifySocketEnvironment, path)

	std, _, _ := testStreams("")
	if err := run([]string{"notify", "--ready", "--status", "serving", "EXTEND_TIMEOUT_USEC=1000"}, std); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	buffer := make([]byte, 1024)
	n, err := conn.Read(buffer)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "READY=1\nSTATUS=serving\nEXTEND_TIMEOUT_USEC=1000\n"
	if string(buffer[:n]) != want {
		t.Errorf("notification = %q, want %q", buffer[:n], want)
	}
}

func TestNotify_Errors(t *testing.T) {
	t.Setenv(daemon.NotifySocketEnvironment, "")

	std, _, _ := testStreams("")
	if err := run([]string{"notify"}, std); process.Code(err) != process.ExitUsage {
		t.Errorf("notify with no states = %v, want usage error", err)
	}
	if err := run([]string{"notify", "not-an-assignment"}, std); process.Code(err) != process.ExitUsage {
		t.Errorf("notify with bare word = %v, want usage error", err)
	}
	t.Setenv("WATCHDOG_USEC", "")
	if err := run([]string{"notify", "--keepalive"}, std); err == nil || process.Code(err) != process.ExitFailure {
		t.Errorf("notify --keepalive without watchdog = %v, want failure", err)
	}
	if err := run([]string{"notify", "--keepalive", "--unset-env"}, std); process.Code(err) != process.ExitUsage {
		t.Errorf("notify --keepalive --unset-env = %v, want usage error", err)
	}
	err := run([]string{"notify", "--ready"}, std)
	if err == nil || process.Code(err) != process.ExitFailure {
		t.Errorf("notify without $NOTIFY_SOCKET = %v, want failure", err)
	}
}

func TestStream(t *testing.T) {
	t.Setenv(journal.StreamEnvironment, "8:1234")
	t.Setenv(daemon.NotifySocketEnvironment, "")
	t.Setenv("WATCHDOG_USEC", "4000000")
	t.Setenv("WATCHDOG_PID", "")
	os.Unsetenv("WATCHDOG_PID")
	credentials := t.TempDir()
	if err := os.WriteFile(filepath.Join(credentials, "token"), []byte("x"), 0600); err != nil {
		t.Fatalf("write credential: %v", err)
	}
	t.Setenv(daemon.CredentialsEnvironment, credentials)

	std, stdout, _ := testStreams("")
	if err := run([]string{"stream"}, std); err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{
		"journal stream: 8:1234 (stderr connected: ",
		"notify socket: unset\n",
		"watchdog: 4s\n",
		"credentials: " + credentials + " (1)\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("stream output missing %q:\n%s", want, output)
		}
	}

	if err := run([]string{"stream", "extra"}, std); process.Code(err) != process.ExitUsage {
		t.Errorf("stream with argument = %v, want usage error", err)
	}
}
