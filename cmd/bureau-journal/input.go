// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// openInput returns path's contents, decompressed according to its
// extension, or stdin when path is empty.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		decoder, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("zstd reader for %s: %w", path, err)
		}
		return &decompressor{Reader: decoder, close: func() error {
			decoder.Close()
			return file.Close()
		}}, nil
	case ".lz4":
		return &decompressor{Reader: lz4.NewReader(file), close: file.Close}, nil
	default:
		return file, nil
	}
}

type decompressor struct {
	io.Reader
	close func() error
}

func (d *decompressor) Close() error {
	return d.close()
}
