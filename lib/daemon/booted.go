// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import "os"

// RuntimeDirectory exists only on hosts booted with systemd as init.
const RuntimeDirectory = "/run/systemd/system"

// Booted reports whether the system was booted with systemd.
func Booted() bool {
	return isDirectory(RuntimeDirectory)
}

func isDirectory(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
