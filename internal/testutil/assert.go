// Package testutil provides shared DBC fixtures and diagnostic assertion
// helpers.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/golangcan/godbc/dbc"
)

// Codes returns the code of each diagnostic, in order.
func Codes(diags []dbc.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

// NoDiagnostics fails the test if any diagnostic was reported.
func NoDiagnostics(t testing.TB, diags []dbc.Diagnostic, msgAndArgs ...any) {
	t.Helper()
	if len(diags) > 0 {
		t.Fatalf("%s: expected no diagnostics, got:\n%s", formatMsg(msgAndArgs), render(diags))
	}
}

// HasDiagnostic fails the test unless a diagnostic with code was reported,
// and returns the first one.
func HasDiagnostic(t testing.TB, diags []dbc.Diagnostic, code string, msgAndArgs ...any) dbc.Diagnostic {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("%s: expected a %s diagnostic, got:\n%s", formatMsg(msgAndArgs), code, render(diags))
	return dbc.Diagnostic{}
}

// NoDiagnostic fails the test if a diagnostic with code was reported.
func NoDiagnostic(t testing.TB, diags []dbc.Diagnostic, code string, msgAndArgs ...any) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			t.Fatalf("%s: unexpected diagnostic %s", formatMsg(msgAndArgs), d)
		}
	}
}

func render(diags []dbc.Diagnostic) string {
	if len(diags) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "  %s %s\n", d.Code, d)
	}
	return b.String()
}

func formatMsg(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "assertion failed"
	}
	msg, ok := msgAndArgs[0].(string)
	if !ok {
		return "assertion failed"
	}
	if len(msgAndArgs) == 1 {
		return msg
	}
	return fmt.Sprintf(msg, msgAndArgs[1:]...)
}
