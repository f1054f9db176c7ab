// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bureau-journal configuration: the default
// syslog identifier, priority, destination socket, and the ordered list
// of extra fields attached to every record the CLI sends.
//
// Configuration is loaded from a single file specified by either the
// BUREAU_JOURNAL_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// Files ending in .json or .jsonc are parsed as JSON with comments and
// trailing commas; anything else is YAML. Both formats use the same
// snake_case keys.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults to notice priority
// when the file has no production section.
//
// ${VAR} and ${VAR:-default} are expanded in the identifier, socket
// path, and field values after loading. [Config.Validate] is strict: a
// field name the journal would reject, or a reserved name, is an error
// here even though the encoder itself drops such fields silently.
package config
