package main

import (
	"flag"
	"fmt"

	"github.com/golangcan/godbc"
)

const dbc2jsonUsage = `godbc dbc2json - Convert a DBC file to a JSON or YAML document

Usage:
  godbc dbc2json [options] FILE

FILE may be "-" for stdin. The document format is YAML with --yaml or when
the output path ends in .yaml or .yml, JSON otherwise.

Examples:
  godbc dbc2json car.dbc
  godbc dbc2json -e windows-1252 -o car.yaml car.dbc
  godbc dbc2json --compact car.dbc
`

const json2dbcUsage = `godbc json2dbc - Convert a JSON or YAML document to a DBC file

Usage:
  godbc json2dbc [options] FILE

The input is read as YAML with --yaml or when FILE ends in .yaml or .yml.
The DBC text is encoded with --output-encoding (default utf-8).

Examples:
  godbc json2dbc -o car.dbc car.json
  godbc json2dbc --output-encoding windows-1252 -o car.dbc car.yaml
`

const fmtUsage = `godbc fmt - Rewrite a DBC file in canonical form

Usage:
  godbc fmt [options] FILE

The output uses --output-encoding when given, otherwise the input
encoding. Writing over the input with -o is safe.

Examples:
  godbc fmt car.dbc
  godbc fmt -e gbk -o car.dbc car.dbc
`

const recodeUsage = `godbc recode - Convert a DBC file between code pages

Usage:
  godbc recode -e FROM --output-encoding TO [options] FILE

The bytes are converted without parsing. Any byte sequence that cannot be
decoded, or any character TO cannot represent, is an error.
`

// singleInput parses the subcommand's own flags and returns its one input
// path. ok is false when the command should exit with code.
func (c *cli) singleInput(name, usage string, args []string) (path string, code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, usage) }
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return "", exitError, false
	}
	if *help || c.helpFlag {
		_, _ = fmt.Fprint(c.stdout, usage)
		return "", exitOK, false
	}
	if fs.NArg() != 1 {
		c.printError("expected exactly one input file")
		_, _ = fmt.Fprint(c.stderr, usage)
		return "", exitError, false
	}
	return fs.Arg(0), exitOK, true
}

// loadDBC reads and loads a DBC file, printing its diagnostics.
func (c *cli) loadDBC(path string, opts []godbc.Option) (*godbc.Database, bool) {
	data, err := readInput(path)
	if err != nil {
		c.printError("%v", err)
		return nil, false
	}
	res, err := godbc.Load(data, opts...)
	c.printDiagnostics(path, res.Diagnostics)
	if err != nil {
		c.printError("%s: %v", path, err)
		return nil, false
	}
	return res.Database, true
}

func (c *cli) cmdDBC2JSON(args []string) int {
	path, code, ok := c.singleInput("dbc2json", dbc2jsonUsage, args)
	if !ok {
		return code
	}
	opts, err := c.options()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	form, err := c.documentFormat(c.output)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	db, ok := c.loadDBC(path, opts)
	if !ok {
		return exitError
	}
	out, err := godbc.EncodeDocument(db, form, c.indent())
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if err := c.writeOutput(out); err != nil {
		c.printError("%v", err)
		return exitError
	}
	return exitOK
}

func (c *cli) cmdJSON2DBC(args []string) int {
	path, code, ok := c.singleInput("json2dbc", json2dbcUsage, args)
	if !ok {
		return code
	}
	opts, err := c.options()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	form, err := c.documentFormat(path)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	data, err := readInput(path)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	res, err := godbc.DecodeDocument(data, form, opts...)
	c.printDiagnostics(path, res.Diagnostics)
	if err != nil {
		c.printError("%s: %v", path, err)
		return exitError
	}
	out, err := godbc.Format(res.Database, opts...)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if err := c.writeOutput(out); err != nil {
		c.printError("%v", err)
		return exitError
	}
	return exitOK
}

func (c *cli) cmdFmt(args []string) int {
	path, code, ok := c.singleInput("fmt", fmtUsage, args)
	if !ok {
		return code
	}
	if c.outEncoding == "" {
		c.outEncoding = c.encoding
	}
	opts, err := c.options()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	db, ok := c.loadDBC(path, opts)
	if !ok {
		return exitError
	}
	out, err := godbc.Format(db, opts...)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	if err := c.writeOutput(out); err != nil {
		c.printError("%v", err)
		return exitError
	}
	return exitOK
}

func (c *cli) cmdRecode(args []string) int {
	path, code, ok := c.singleInput("recode", recodeUsage, args)
	if !ok {
		return code
	}
	if c.encoding == "" || c.outEncoding == "" {
		c.printError("recode needs both -e and --output-encoding")
		return exitError
	}

	data, err := readInput(path)
	if err != nil {
		c.printError("%v", err)
		return exitError
	}
	out, err := godbc.Recode(data, c.encoding, c.outEncoding)
	if err != nil {
		c.printError("%s: %v", path, err)
		return exitError
	}
	if err := c.writeOutput(out); err != nil {
		c.printError("%v", err)
		return exitError
	}
	return exitOK
}
