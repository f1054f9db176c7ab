// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Decode parses a native-protocol buffer into its fields, in wire
// order. It accepts both the NAME=value and the explicit-length frame
// shapes and fails on truncated or malformed input. Field names are not
// validated; Decode reports what is on the wire.
func Decode(buffer []byte) ([]Field, error) {
	var fields []Field
	offset := 0
	for offset < len(buffer) {
		rest := buffer[offset:]
		lineEnd := bytes.IndexByte(rest, '\n')
		if lineEnd < 0 {
			return nil, fmt.Errorf("journal: decode at offset %d: missing newline", offset)
		}
		line := rest[:lineEnd]

		if separator := bytes.IndexByte(line, '='); separator >= 0 {
			fields = append(fields, Field{
				Name:  string(line[:separator]),
				Value: string(line[separator+1:]),
			})
			offset += lineEnd + 1
			continue
		}

		// Explicit-length frame: NAME\n<u64 LE><value>\n
		name := string(line)
		if name == "" {
			return nil, fmt.Errorf("journal: decode at offset %d: empty field name", offset)
		}
		header := rest[lineEnd+1:]
		if len(header) < 8 {
			return nil, fmt.Errorf("journal: decode field %s: truncated length", name)
		}
		length := binary.LittleEndian.Uint64(header)
		body := header[8:]
		if length >= uint64(len(body)) {
			return nil, fmt.Errorf("journal: decode field %s: declared length %d exceeds remaining %d bytes", name, length, len(body))
		}
		if body[length] != '\n' {
			return nil, fmt.Errorf("journal: decode field %s: missing terminator after %d-byte value", name, length)
		}
		fields = append(fields, Field{Name: name, Value: string(body[:length])})
		offset += lineEnd + 1 + 8 + int(length) + 1
	}
	return fields, nil
}
