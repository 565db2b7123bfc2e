package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// runCLI runs the command with a private config directory so no user
// defaults leak into the test.
func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestUsage(t *testing.T) {
	r := runCLI(t)
	require.Equal(t, exitError, r.code)
	require.Contains(t, r.stderr, "Usage:")

	r = runCLI(t, "--help")
	require.Equal(t, exitOK, r.code)
	require.Contains(t, r.stdout, "dbc2json")

	r = runCLI(t, "frobnicate")
	require.Equal(t, exitError, r.code)
	require.Contains(t, r.stderr, "unknown command: frobnicate")

	r = runCLI(t, "version")
	require.Equal(t, exitOK, r.code)
	require.True(t, strings.HasPrefix(r.stdout, "godbc "))
}

func TestSubcommandHelp(t *testing.T) {
	for _, cmd := range []string{"dbc2json", "json2dbc", "fmt", "recode", "check"} {
		t.Run(cmd, func(t *testing.T) {
			r := runCLI(t, cmd, "-h")
			require.Equal(t, exitOK, r.code)
			require.Contains(t, r.stdout, "godbc "+cmd)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "full.dbc", []byte(testutil.FullDBC))
	doc := filepath.Join(dir, "full.json")
	out := filepath.Join(dir, "out.dbc")

	r := runCLI(t, "dbc2json", "-o", doc, in)
	require.Equal(t, exitOK, r.code, r.stderr)
	var parsed map[string]any
	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Equal(t, "1.2.3", parsed["version"])

	r = runCLI(t, "json2dbc", "--output="+out, doc)
	require.Equal(t, exitOK, r.code, r.stderr)

	r = runCLI(t, "fmt", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	formatted, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, r.stdout, string(formatted))
}

func TestConvertYAML(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "engine.dbc", []byte(testutil.EngineDBC))
	doc := filepath.Join(dir, "engine.yaml")

	r := runCLI(t, "dbc2json", "-o", doc, in)
	require.Equal(t, exitOK, r.code, r.stderr)
	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	require.Contains(t, string(data), "name: Engine")

	r = runCLI(t, "json2dbc", doc)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "BO_ 100 Engine: 8 ECU1")

	r = runCLI(t, "dbc2json", "--yaml", "--compact", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "messages:")
}

func TestFailedLoadLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bad.dbc", []byte("BO_ 1 A: 8 X\nBO_ 1 B: 8 X\n"))
	out := writeFile(t, dir, "out.json", []byte("previous"))

	r := runCLI(t, "dbc2json", "-o", out, in)
	require.Equal(t, exitError, r.code)
	require.Contains(t, r.stderr, dbc.DiagDuplicateMessageID)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "no temporary files left behind")
}

func TestWarningsGoToStderr(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "cat.dbc", []byte(testutil.EngineDBC+"\nCAT_DEF_ 1 Cat 0 ;\n"))

	r := runCLI(t, "fmt", in)
	require.Equal(t, exitOK, r.code)
	require.Contains(t, r.stderr, "unsupported section CAT_DEF_")
	require.NotContains(t, r.stdout, "CAT_DEF_")

	r = runCLI(t, "fmt", "--strict", in)
	require.Equal(t, exitError, r.code)
	require.Empty(t, r.stdout)
}

func TestEncodings(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "gbk.dbc", append([]byte(testutil.EngineDBC), "CM_ \"\xd6\xd0\xce\xc4\";\n"...))

	r := runCLI(t, "fmt", in)
	require.Equal(t, exitError, r.code)
	require.Contains(t, r.stderr, "undecodable byte sequence")

	r = runCLI(t, "fmt", "-e", "gbk", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "CM_ \"\xd6\xd0\xce\xc4\";")

	r = runCLI(t, "fmt", "-egbk", "--output-encoding", "utf-8", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "CM_ \"中文\";")

	r = runCLI(t, "fmt", "--lossy", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stderr, dbc.DiagUndecodable)

	r = runCLI(t, "recode", "-e", "gbk", "--output-encoding", "utf-8", in)
	require.Equal(t, exitOK, r.code, r.stderr)
	require.Contains(t, r.stdout, "CM_ \"中文\";")

	r = runCLI(t, "recode", "-e", "gbk", in)
	require.Equal(t, exitError, r.code)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.dbc", []byte(testutil.FullDBC))
	writeFile(t, dir, "bad.dbc", []byte("BO_ 1 M: 1 X\n SG_ S : 60|8@1+ (1,0) [0|0] \"\" X\n"))

	r := runCLI(t, "check", dir)
	require.Equal(t, exitError, r.code)
	require.Contains(t, r.stdout, "FAIL  "+filepath.Join(dir, "bad.dbc"))
	require.Contains(t, r.stdout, "ok    "+filepath.Join(dir, "good.dbc")+" (3 messages")
	require.Contains(t, r.stdout, "2 checked, 1 failed")

	r = runCLI(t, "check", "--json", dir)
	require.Equal(t, exitError, r.code)
	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &report))
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Files, 2)
	require.False(t, report.Files[0].OK)
	require.True(t, report.Files[1].OK)

	r = runCLI(t, "check", "--quiet", filepath.Join(dir, "good.dbc"))
	require.Equal(t, exitOK, r.code)
	require.Empty(t, r.stdout)

	r = runCLI(t, "check", filepath.Join(dir, "missing.dbc"))
	require.Equal(t, exitError, r.code)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.dbc")
	require.NoError(t, writeFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, writeFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "two", string(data))

	err = writeFileAtomic(filepath.Join(dir, "missing", "out.dbc"), []byte("x"), 0o644)
	require.Error(t, err)
}
