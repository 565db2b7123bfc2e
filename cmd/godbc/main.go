// Command godbc converts CAN databases between DBC text and JSON or YAML
// documents, canonicalizes DBC files and checks them for problems.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/golangcan/godbc"
	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/document"
)

// Exit codes.
const (
	exitOK    = 0 // success
	exitError = 1 // usage error, unreadable input or a failed load
)

const usage = `godbc - CAN database (DBC) converter and checker

Usage:
  godbc <command> [options] [arguments]

Commands:
  dbc2json  Convert a DBC file to a JSON or YAML document
  json2dbc  Convert a JSON or YAML document to a DBC file
  fmt       Rewrite a DBC file in canonical form
  recode    Convert a DBC file between code pages without parsing it
  check     Validate DBC files and report diagnostics
  version   Show version

Common options:
  -o, --output PATH         Write output to PATH instead of stdout
  -e, --encoding CP         Code page of DBC input (default utf-8)
  --output-encoding CP      Code page of DBC output (default utf-8)
  --lossy                   Replace undecodable bytes instead of failing
  --strict                  Fail on any reported warning
  --yaml                    Use YAML documents instead of JSON
  --compact                 Write documents without indentation
  --config PATH             Read defaults from a TOML file
  -v, --verbose             Enable debug logging
  -vv                       Enable trace logging (implies -v)
  -h, --help                Show help

Examples:
  godbc dbc2json -e windows-1252 -o car.json car.dbc
  godbc json2dbc --output-encoding gbk -o car.dbc car.json
  godbc fmt -o car.dbc car.dbc
  godbc recode -e gbk --output-encoding utf-8 -o out.dbc in.dbc
  godbc check --strict -r databases/
`

type cli struct {
	verbose     int
	output      string
	encoding    string
	outEncoding string
	lossy       bool
	strict      bool
	yaml        bool
	compact     bool
	configPath  string
	helpFlag    bool

	file   fileConfig
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	c := cli{stdout: stdout, stderr: stderr}
	var cmdArgs []string
	var cmd string

	// value returns the argument of a flag given as "-x VALUE" and advances i.
	value := func(i *int) string {
		if *i+1 < len(args) {
			*i++
			return args[*i]
		}
		return ""
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "-v" || arg == "--verbose":
			if c.verbose < 1 {
				c.verbose = 1
			}
		case arg == "-vv":
			c.verbose = 2
		case arg == "--lossy":
			c.lossy = true
		case arg == "--strict":
			c.strict = true
		case arg == "--yaml":
			c.yaml = true
		case arg == "--compact":
			c.compact = true
		case arg == "-o" || arg == "--output":
			c.output = value(&i)
		case strings.HasPrefix(arg, "--output="):
			c.output = arg[len("--output="):]
		case arg == "-e" || arg == "--encoding":
			c.encoding = value(&i)
		case strings.HasPrefix(arg, "--encoding="):
			c.encoding = arg[len("--encoding="):]
		case arg == "--output-encoding":
			c.outEncoding = value(&i)
		case strings.HasPrefix(arg, "--output-encoding="):
			c.outEncoding = arg[len("--output-encoding="):]
		case arg == "--config":
			c.configPath = value(&i)
		case strings.HasPrefix(arg, "--config="):
			c.configPath = arg[len("--config="):]
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
			c.output = arg[2:]
		case strings.HasPrefix(arg, "-e") && len(arg) > 2:
			c.encoding = arg[2:]
		case len(arg) > 0 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}

	if c.helpFlag && cmd == "" {
		_, _ = fmt.Fprint(c.stdout, usage)
		return exitOK
	}

	if cmd == "" {
		_, _ = fmt.Fprint(c.stderr, usage)
		return exitError
	}

	switch cmd {
	case "version":
		c.printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(c.stdout, usage)
		return exitOK
	}

	if err := c.loadConfig(); err != nil {
		c.printError("%v", err)
		return exitError
	}

	switch cmd {
	case "dbc2json":
		return c.cmdDBC2JSON(cmdArgs)
	case "json2dbc":
		return c.cmdJSON2DBC(cmdArgs)
	case "fmt":
		return c.cmdFmt(cmdArgs)
	case "recode":
		return c.cmdRecode(cmdArgs)
	case "check":
		return c.cmdCheck(cmdArgs)
	default:
		_, _ = fmt.Fprintf(c.stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(c.stderr, usage)
		return exitError
	}
}

// loadConfig reads the defaults file and fills in every setting not given
// on the command line.
func (c *cli) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}
	file, err := readConfig(path, explicit)
	if err != nil {
		return err
	}
	c.file = file
	if c.encoding == "" {
		c.encoding = file.Encoding
	}
	if c.outEncoding == "" {
		c.outEncoding = file.OutputEncoding
	}
	c.lossy = c.lossy || file.Lossy
	c.strict = c.strict || file.Strict
	return nil
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = godbc.LevelTrace
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// options returns the library options for the current settings.
func (c *cli) options() ([]godbc.Option, error) {
	diagCfg, err := c.file.diagnosticConfig(c.strict)
	if err != nil {
		return nil, err
	}
	opts := []godbc.Option{godbc.WithDiagnosticConfig(diagCfg)}
	if c.encoding != "" {
		opts = append(opts, godbc.WithCodePage(c.encoding))
	}
	if c.outEncoding != "" {
		opts = append(opts, godbc.WithOutputCodePage(c.outEncoding))
	}
	if c.lossy {
		opts = append(opts, godbc.WithLossyDecoding())
	}
	if c.file.Concurrency > 0 {
		opts = append(opts, godbc.WithConcurrency(c.file.Concurrency))
	}
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, godbc.WithLogger(logger))
	}
	return opts, nil
}

// documentFormat picks the document format: --yaml, then the config file,
// then the extension of path.
func (c *cli) documentFormat(path string) (godbc.DocumentFormat, error) {
	if c.yaml {
		return godbc.FormatYAML, nil
	}
	form, set, err := c.file.documentFormat()
	if err != nil || set {
		return form, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return godbc.FormatYAML, nil
	}
	return godbc.FormatJSON, nil
}

func (c *cli) indent() int {
	switch {
	case c.compact:
		return 0
	case c.file.Indent != nil:
		return max(*c.file.Indent, 0)
	}
	return 2
}

func parseDocumentFormat(s string) (godbc.DocumentFormat, error) {
	return document.ParseFormat(s)
}

func (c *cli) printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	_, _ = fmt.Fprintf(c.stdout, "godbc %s\n", version)
}

func (c *cli) printError(format string, args ...any) {
	_, _ = fmt.Fprintf(c.stderr, "error: "+format+"\n", args...)
}

// printDiagnostics writes diagnostics to stderr, prefixed with the input
// name and suffixed with the diagnostic code.
func (c *cli) printDiagnostics(name string, diags []dbc.Diagnostic) {
	for _, d := range diags {
		_, _ = fmt.Fprintf(c.stderr, "%s: %s (%s)\n", name, d, d.Code)
	}
}
