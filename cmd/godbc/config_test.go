package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc"
	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/testutil"
)

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "godbc.toml", []byte(`
encoding = "gbk"
document = "yaml"
indent = 4

[diagnostics]
level = "permissive"
fail_at = "error"
ignore = ["comment-*"]
overrides = { "section-unsupported" = "info" }
`))

	cfg, err := readConfig(path, true)
	require.NoError(t, err)
	require.Equal(t, "gbk", cfg.Encoding)
	require.Equal(t, 4, *cfg.Indent)

	form, set, err := cfg.documentFormat()
	require.NoError(t, err)
	require.True(t, set)
	require.Equal(t, godbc.FormatYAML, form)

	diag, err := cfg.diagnosticConfig(false)
	require.NoError(t, err)
	require.Equal(t, dbc.StrictnessPermissive, diag.Level)
	require.Equal(t, dbc.SeverityError, diag.FailAt)
	require.Contains(t, diag.Ignore, "comment-*")
	require.Equal(t, dbc.SeverityInfo, diag.Overrides[dbc.DiagSectionUnsupported])
}

func TestReadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := readConfig(filepath.Join(dir, "missing.toml"), true)
	require.Error(t, err)

	cfg, err := readConfig(filepath.Join(dir, "missing.toml"), false)
	require.NoError(t, err)
	require.Equal(t, fileConfig{}, cfg)

	unknown := writeFile(t, dir, "unknown.toml", []byte("encodng = \"gbk\"\n"))
	_, err = readConfig(unknown, true)
	require.ErrorContains(t, err, "unknown keys: encodng")

	bad := writeFile(t, dir, "bad.toml", []byte("[diagnostics]\nfail_at = \"catastrophic\"\n"))
	cfg, err = readConfig(bad, true)
	require.NoError(t, err)
	_, err = cfg.diagnosticConfig(false)
	require.ErrorContains(t, err, "unknown severity")
}

func TestConfigSuppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "gbk.dbc", append([]byte(testutil.EngineDBC), "CM_ \"\xd6\xd0\xce\xc4\";\n"...))
	conf := writeFile(t, dir, "godbc.toml", []byte("encoding = \"gbk\"\noutput_encoding = \"utf-8\"\n"))

	r := runCLI(t, "fmt", "--config", conf, in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "CM_ \"中文\";")

	// Flags win over the file.
	r = runCLI(t, "fmt", "--config", conf, "--output-encoding", "gbk", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "CM_ \"\xd6\xd0\xce\xc4\";")

	strict := writeFile(t, dir, "strict.toml", []byte("strict = true\n"))
	cat := writeFile(t, dir, "cat.dbc", []byte(testutil.EngineDBC+"\nCAT_DEF_ 1 Cat 0 ;\n"))
	r = runCLI(t, "fmt", "--config="+strict, cat)
	require.Equal(t, exitError, r.code)

	r = runCLI(t, "fmt", "--config", filepath.Join(dir, "nope.toml"), in)
	require.Equal(t, exitError, r.code)
}
