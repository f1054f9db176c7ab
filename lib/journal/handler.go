// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package journal

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level sent. Nil means slog.LevelInfo.
	Level slog.Leveler

	// AddSource adds CODE_FILE, CODE_LINE and CODE_FUNC fields.
	AddSource bool

	// Identifier, when set, is sent as SYSLOG_IDENTIFIER.
	Identifier string
}

// Handler is a slog.Handler that sends each record to the journal as
// one native-protocol entry. Attribute keys become field names via
// FieldName, with groups joined by underscores ("http" + "status"
// becomes HTTP_STATUS). Sends are synchronous.
type Handler struct {
	transport *Transport
	options   HandlerOptions
	prefix    string
	fields    []Field
}

// NewHandler returns a Handler writing through transport. A nil
// transport means DefaultTransport.
func NewHandler(transport *Transport, options *HandlerOptions) *Handler {
	if transport == nil {
		transport = DefaultTransport
	}
	handler := &Handler{transport: transport}
	if options != nil {
		handler.options = *options
	}
	return handler
}

// Enabled reports whether level meets the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minimum := slog.LevelInfo
	if h.options.Level != nil {
		minimum = h.options.Level.Level()
	}
	return level >= minimum
}

// Handle sends record. A transport that is not available swallows the
// record; delivery failures are returned.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Grow(slices.Clone(h.fields), record.NumAttrs()+4)

	if h.options.Identifier != "" {
		fields = append(fields, Field{Name: "SYSLOG_IDENTIFIER", Value: h.options.Identifier})
	}
	if h.options.AddSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		fields = append(fields,
			Field{Name: "CODE_FILE", Value: frame.File},
			Field{Name: "CODE_LINE", Value: strconv.Itoa(frame.Line)},
			Field{Name: "CODE_FUNC", Value: frame.Function},
		)
	}

	record.Attrs(func(attribute slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, attribute)
		return true
	})

	_, err := h.transport.Send(LevelPriority(record.Level), record.Message, fields...)
	return err
}

// WithAttrs returns a Handler that adds attributes to every record.
func (h *Handler) WithAttrs(attributes []slog.Attr) slog.Handler {
	if len(attributes) == 0 {
		return h
	}
	clone := *h
	clone.fields = slices.Clone(h.fields)
	for _, attribute := range attributes {
		clone.fields = appendAttr(clone.fields, h.prefix, attribute)
	}
	return &clone
}

// WithGroup returns a Handler that prefixes later attribute names.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + FieldName(name) + "_"
	return &clone
}

func appendAttr(fields []Field, prefix string, attribute slog.Attr) []Field {
	attribute.Value = attribute.Value.Resolve()
	if attribute.Equal(slog.Attr{}) {
		return fields
	}

	if attribute.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attribute.Key != "" {
			groupPrefix = prefix + FieldName(attribute.Key) + "_"
		}
		for _, member := range attribute.Value.Group() {
			fields = appendAttr(fields, groupPrefix, member)
		}
		return fields
	}

	var value string
	if attribute.Value.Kind() == slog.KindTime {
		value = attribute.Value.Time().Format(time.RFC3339Nano)
	} else {
		value = attribute.Value.String()
	}
	return append(fields, Field{Name: FieldName(prefix + attribute.Key), Value: value})
}

// LevelPriority maps a slog level onto the syslog severity scale.
func LevelPriority(level slog.Level) Priority {
	switch {
	case level >= slog.LevelError+4:
		return Critical
	case level >= slog.LevelError:
		return Error
	case level >= slog.LevelWarn:
		return Warning
	case level > slog.LevelInfo:
		return Notice
	case level >= slog.LevelInfo:
		return Info
	default:
		return Debug
	}
}

// FieldName converts an arbitrary key into a valid journal field name:
// letters are upper-cased, every other byte outside [A-Z0-9_] becomes
// '_', leading underscores are removed, a leading digit gets an "F"
// prefix, and the result is cut to MaxFieldNameLength. A key with
// nothing usable in it yields "", which the encoder drops.
func FieldName(key string) string {
	var builder strings.Builder
	builder.Grow(len(key))
	for index := 0; index < len(key); index++ {
		c := key[index]
		switch {
		case c >= 'a' && c <= 'z':
			builder.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', isDigit(c):
			builder.WriteByte(c)
		default:
			builder.WriteByte('_')
		}
	}

	name := strings.TrimLeft(builder.String(), "_")
	if name != "" && isDigit(name[0]) {
		name = "F" + name
	}
	if len(name) > MaxFieldNameLength {
		name = name[:MaxFieldNameLength]
	}
	return name
}
