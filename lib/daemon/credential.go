// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialsEnvironment names the directory systemd populates from the
// unit's LoadCredential= and SetCredential= settings.
const CredentialsEnvironment = "CREDENTIALS_DIRECTORY"

// CredentialLoader reads credentials by ID. Only the unit's user and
// the superuser can read them.
type CredentialLoader struct {
	directory string
}

// Credentials returns a loader for $CREDENTIALS_DIRECTORY, or false
// when the variable is unset or does not name a directory.
func Credentials() (*CredentialLoader, bool) {
	directory := os.Getenv(CredentialsEnvironment)
	if directory == "" || !isDirectory(directory) {
		return nil, false
	}
	return &CredentialLoader{directory: directory}, true
}

// Directory returns the credential directory.
func (l *CredentialLoader) Directory() string {
	return l.directory
}

// Get returns the contents of credential id. An id is a single path
// element; anything that would resolve outside the directory is
// rejected.
func (l *CredentialLoader) Get(id string) ([]byte, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsRune(id, '/') {
		return nil, fmt.Errorf("credential %q: invalid credential ID", id)
	}
	data, err := os.ReadFile(filepath.Join(l.directory, id))
	if err != nil {
		return nil, fmt.Errorf("credential %q: %w", id, err)
	}
	return data, nil
}

// List returns the IDs of all credentials, sorted.
func (l *CredentialLoader) List() ([]string, error) {
	entries, err := os.ReadDir(l.directory)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}
