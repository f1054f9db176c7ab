// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/systemd/lib/journal"
)

// EnvironmentVariable names the configuration file for Load.
const EnvironmentVariable = "BUREAU_JOURNAL_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the bureau-journal configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment" json:"environment"`

	// Identifier is sent as SYSLOG_IDENTIFIER. Empty omits the field.
	Identifier string `yaml:"identifier" json:"identifier"`

	// Priority is the default severity: a syslog keyword such as
	// "info" or "warning", or a digit 0-7.
	Priority string `yaml:"priority" json:"priority"`

	// SocketPath is the journald native socket.
	SocketPath string `yaml:"socket_path" json:"socket_path"`

	// Fields are attached to every record, in order, after the
	// identifier.
	Fields []Field `yaml:"fields" json:"fields"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty" json:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// Field is one configured journal field.
type Field struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Overrides contains the values an environment section may change.
// Fields are appended to the base list rather than replacing it.
type Overrides struct {
	Identifier string  `yaml:"identifier,omitempty" json:"identifier,omitempty"`
	Priority   string  `yaml:"priority,omitempty" json:"priority,omitempty"`
	SocketPath string  `yaml:"socket_path,omitempty" json:"socket_path,omitempty"`
	Fields     []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Default returns the configuration used as a base before loading.
func Default() *Config {
	return &Config{
		Environment: Development,
		Identifier:  "bureau-journal",
		Priority:    journal.Info.String(),
		SocketPath:  "/run/systemd/journal/socket",
	}
}

// Load loads configuration from the file named by
// BUREAU_JOURNAL_CONFIG. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your configuration file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, applies the override section
// for the configured environment, and expands variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges path into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	default:
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &Overrides{Priority: journal.Notice.String()}
		}
	}

	if overrides == nil {
		return
	}
	if overrides.Identifier != "" {
		c.Identifier = overrides.Identifier
	}
	if overrides.Priority != "" {
		c.Priority = overrides.Priority
	}
	if overrides.SocketPath != "" {
		c.SocketPath = overrides.SocketPath
	}
	c.Fields = append(c.Fields, overrides.Fields...)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":     os.Getenv("HOME"),
		"HOSTNAME": hostname(),
	}

	c.Identifier = expandVars(c.Identifier, vars)
	c.SocketPath = expandVars(c.SocketPath, vars)
	for index := range c.Fields {
		c.Fields[index].Value = expandVars(c.Fields[index].Value, vars)
	}
}

func hostname() string {
	name, _ := os.Hostname()
	return name
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns. Provided vars
// are consulted before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem is
// reported, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if _, err := journal.ParsePriority(c.Priority); err != nil {
		errs = append(errs, fmt.Errorf("priority: %w", err))
	}

	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket_path is required"))
	}

	for index, field := range c.Fields {
		switch {
		case field.Name == "PRIORITY" || field.Name == "MESSAGE":
			errs = append(errs, fmt.Errorf("fields[%d]: %s is set from the record and cannot be configured", index, field.Name))
		case field.Name == "SYSLOG_IDENTIFIER":
			errs = append(errs, fmt.Errorf("fields[%d]: use identifier instead of a SYSLOG_IDENTIFIER field", index))
		case !journal.ValidFieldName(field.Name):
			errs = append(errs, fmt.Errorf("fields[%d]: invalid field name %q: must be 1-%d of A-Z, 0-9, _ and not start with _ or a digit",
				index, field.Name, journal.MaxFieldNameLength))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DefaultPriority returns the parsed Priority. Call Validate first;
// an unparsable value yields journal.Info.
func (c *Config) DefaultPriority() journal.Priority {
	priority, err := journal.ParsePriority(c.Priority)
	if err != nil {
		return journal.Info
	}
	return priority
}

// JournalFields returns SYSLOG_IDENTIFIER (when set) followed by the
// configured fields, ready to pass to journal.Send.
func (c *Config) JournalFields() []journal.Field {
	fields := make([]journal.Field, 0, len(c.Fields)+1)
	if c.Identifier != "" {
		fields = append(fields, journal.Field{Name: "SYSLOG_IDENTIFIER", Value: c.Identifier})
	}
	for _, field := range c.Fields {
		fields = append(fields, journal.Field{Name: field.Name, Value: field.Value})
	}
	return fields
}
