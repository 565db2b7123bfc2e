package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/golangcan/godbc"
	"github.com/golangcan/godbc/dbc"
)

// fileConfig is the optional defaults file. Command-line flags win over
// every value set here.
//
//	encoding = "windows-1252"
//	output_encoding = "utf-8"
//	lossy = false
//	document = "yaml"
//	indent = 4
//	concurrency = 8
//
//	[diagnostics]
//	level = "normal"
//	fail_at = "severe"
//	ignore = ["comment-dangling"]
//	overrides = { "section-unsupported" = "info" }
type fileConfig struct {
	Encoding       string            `toml:"encoding"`
	OutputEncoding string            `toml:"output_encoding"`
	Lossy          bool              `toml:"lossy"`
	Strict         bool              `toml:"strict"`
	Document       string            `toml:"document"`
	Indent         *int              `toml:"indent"`
	Concurrency    int               `toml:"concurrency"`
	Diagnostics    diagnosticsConfig `toml:"diagnostics"`
}

type diagnosticsConfig struct {
	Level     string            `toml:"level"`
	FailAt    string            `toml:"fail_at"`
	Ignore    []string          `toml:"ignore"`
	Overrides map[string]string `toml:"overrides"`
}

const configFileName = "godbc.toml"

// defaultConfigPath returns the per-user defaults file, or "" when the
// platform has no config directory.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "godbc", configFileName)
}

// readConfig decodes the defaults file at path. A missing file is not an
// error unless the path was given explicitly.
func readConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// diagnosticConfig builds the library configuration from the file's
// [diagnostics] table, on top of the strict preset when strict is set.
func (c fileConfig) diagnosticConfig(strict bool) (dbc.DiagnosticConfig, error) {
	cfg := dbc.DefaultConfig()
	if strict {
		cfg = dbc.StrictConfig()
	}
	d := c.Diagnostics
	if d.Level != "" {
		level, ok := strictnessLevels[strings.ToLower(d.Level)]
		if !ok {
			return cfg, fmt.Errorf("unknown diagnostics level %q", d.Level)
		}
		cfg.Level = level
	}
	if d.FailAt != "" {
		sev, err := parseSeverity(d.FailAt)
		if err != nil {
			return cfg, err
		}
		cfg.FailAt = sev
	}
	cfg.Ignore = append(cfg.Ignore, d.Ignore...)
	if len(d.Overrides) > 0 {
		cfg.Overrides = make(map[string]dbc.Severity, len(d.Overrides))
		for code, name := range d.Overrides {
			sev, err := parseSeverity(name)
			if err != nil {
				return cfg, fmt.Errorf("override %s: %w", code, err)
			}
			cfg.Overrides[code] = sev
		}
	}
	return cfg, nil
}

func (c fileConfig) documentFormat() (godbc.DocumentFormat, bool, error) {
	if c.Document == "" {
		return godbc.FormatJSON, false, nil
	}
	form, err := parseDocumentFormat(c.Document)
	return form, true, err
}

var strictnessLevels = map[string]dbc.StrictnessLevel{
	"strict":     dbc.StrictnessStrict,
	"normal":     dbc.StrictnessNormal,
	"permissive": dbc.StrictnessPermissive,
	"silent":     dbc.StrictnessSilent,
}

var severities = map[string]dbc.Severity{
	"fatal":   dbc.SeverityFatal,
	"severe":  dbc.SeveritySevere,
	"error":   dbc.SeverityError,
	"minor":   dbc.SeverityMinor,
	"style":   dbc.SeverityStyle,
	"warning": dbc.SeverityWarning,
	"info":    dbc.SeverityInfo,
}

func parseSeverity(s string) (dbc.Severity, error) {
	sev, ok := severities[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}
