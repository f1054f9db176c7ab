// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// Field is one caller-supplied journal field.
type Field struct {
	Name  string
	Value string
}

// MaxFieldNameLength is the longest field name journald accepts.
const MaxFieldNameLength = 64

const (
	priorityField = "PRIORITY"
	messageField  = "MESSAGE"
)

// ValidFieldName reports whether journald accepts name as a field name:
// 1 to 64 bytes of uppercase ASCII letters, digits and underscores, not
// starting with a digit or an underscore. Names starting with '_' are
// trusted fields that only journald itself may set.
func ValidFieldName(name string) bool {
	if name == "" || len(name) > MaxFieldNameLength {
		return false
	}
	if name[0] == '_' || isDigit(name[0]) {
		return false
	}
	for index := 0; index < len(name); index++ {
		c := name[index]
		if !(c >= 'A' && c <= 'Z') && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// AppendField appends one framed field to buffer and returns the
// extended buffer. Values without a newline use the NAME=value form;
// values containing one use the explicit-length form, which is also the
// only form that can carry a trailing newline. A field with an invalid
// name is dropped and buffer is returned unchanged.
func AppendField(buffer []byte, name, value string) []byte {
	if !ValidFieldName(name) {
		return buffer
	}
	if strings.IndexByte(value, '\n') < 0 {
		buffer = append(buffer, name...)
		buffer = append(buffer, '=')
		buffer = append(buffer, value...)
		return append(buffer, '\n')
	}
	return appendExplicitLength(buffer, name, value)
}

// appendExplicitLength writes NAME, a newline, the value length as a
// little-endian uint64, the value, and a final newline.
func appendExplicitLength(buffer []byte, name, value string) []byte {
	buffer = append(buffer, name...)
	buffer = append(buffer, '\n')
	buffer = binary.LittleEndian.AppendUint64(buffer, uint64(len(value)))
	buffer = append(buffer, value...)
	return append(buffer, '\n')
}

// Encode builds the native-protocol buffer for one record. The result
// always starts with PRIORITY and MESSAGE; caller fields follow in
// order, minus any named PRIORITY or MESSAGE and any with invalid names.
// Encode is deterministic: equal inputs produce identical bytes.
func Encode(priority Priority, message string, fields []Field) []byte {
	size := len(priorityField) + 3 + len(messageField) + len(message) + 10
	for _, field := range fields {
		size += len(field.Name) + len(field.Value) + 10
	}

	buffer := make([]byte, 0, size)
	buffer = AppendField(buffer, priorityField, strconv.FormatUint(uint64(priority), 10))
	buffer = AppendField(buffer, messageField, message)
	for _, field := range fields {
		if field.Name == priorityField || field.Name == messageField {
			continue
		}
		buffer = AppendField(buffer, field.Name, field.Value)
	}
	return buffer
}
