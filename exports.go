// Package godbc parses, validates and converts CAN database (DBC) files.
//
// Load turns DBC bytes in any supported code page into an immutable,
// validated *Database. Format renders a database as canonical DBC text,
// and EncodeDocument/DecodeDocument map it to and from JSON or YAML.
// LoadAll runs many independent loads in parallel.
package godbc

import (
	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/document"
)

// Type aliases for the public API. The model lives in the dbc package and
// the document form in the document package.

// Database is a validated DBC file.
type Database = dbc.Database

// Node is a network participant.
type Node = dbc.Node

// Message is a frame definition.
type Message = dbc.Message

// Signal is a bit-packed field of a message.
type Signal = dbc.Signal

// Multiplex is a signal's multiplexing role.
type Multiplex = dbc.Multiplex

// EnvVar is an environment variable.
type EnvVar = dbc.EnvVar

// Ref identifies an entity of a database.
type Ref = dbc.Ref

// Value is an attribute value.
type Value = dbc.Value

// Diagnostic represents a decoding, parsing or validation issue.
type Diagnostic = dbc.Diagnostic

// DiagnosticConfig controls strictness and diagnostic filtering.
type DiagnosticConfig = dbc.DiagnosticConfig

// Severity for diagnostics.
type Severity = dbc.Severity

// Document is the structured form of a database.
type Document = document.Document

// DocumentFormat selects JSON or YAML for documents.
type DocumentFormat = document.Format

// Document formats.
const (
	FormatJSON = document.FormatJSON
	FormatYAML = document.FormatYAML
)
