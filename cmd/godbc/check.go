package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/golangcan/godbc"
)

const checkUsage = `godbc check - Validate DBC files and report diagnostics

Usage:
  godbc check [options] PATH...

Each PATH is a DBC file or a directory of *.dbc files. Files are checked
in parallel; the exit code is 1 if any of them fails to load.

Options:
  -r, --recursive   Descend into subdirectories
  --json            Write a JSON report to stdout
  --quiet           No output, exit code only
  -h, --help        Show help

Examples:
  godbc check car.dbc
  godbc check --strict -r databases/
  godbc check --json -e windows-1252 databases/
`

type checkReport struct {
	Files  []checkFile `json:"files"`
	Failed int         `json:"failed"`
}

type checkFile struct {
	Name        string           `json:"name"`
	OK          bool             `json:"ok"`
	Error       string           `json:"error,omitempty"`
	Messages    int              `json:"messages"`
	Diagnostics []diagnosticJSON `json:"diagnostics,omitempty"`
}

type diagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Entity   string `json:"entity,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

func (c *cli) cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { _, _ = fmt.Fprint(c.stderr, checkUsage) }

	recursive := fs.Bool("r", false, "descend into subdirectories")
	fs.BoolVar(recursive, "recursive", false, "descend into subdirectories")
	jsonOut := fs.Bool("json", false, "JSON report")
	quiet := fs.Bool("quiet", false, "no output")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if *help || c.helpFlag {
		_, _ = fmt.Fprint(c.stdout, checkUsage)
		return exitOK
	}
	if fs.NArg() == 0 {
		c.printError("no input paths specified")
		_, _ = fmt.Fprint(c.stderr, checkUsage)
		return exitError
	}

	opts, err := c.options()
	if err != nil {
		c.printError("%v", err)
		return exitError
	}

	var sources []godbc.Source
	for _, path := range fs.Args() {
		info, err := os.Stat(path)
		if err != nil {
			c.printError("%v", err)
			return exitError
		}
		if !info.IsDir() {
			sources = append(sources, godbc.File(path))
			continue
		}
		var srcOpts []godbc.SourceOption
		if *recursive {
			srcOpts = append(srcOpts, godbc.WithRecursion())
		}
		src, err := godbc.Dir(path, srcOpts...)
		if err != nil {
			c.printError("%v", err)
			return exitError
		}
		sources = append(sources, src)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results := godbc.LoadAll(ctx, sources, opts...)

	report := buildCheckReport(results)
	switch {
	case *quiet:
	case *jsonOut:
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			c.printError("%v", err)
			return exitError
		}
	default:
		c.printCheckReport(results, report)
	}

	if report.Failed > 0 {
		return exitError
	}
	return exitOK
}

func buildCheckReport(results []godbc.BatchResult) checkReport {
	report := checkReport{Files: make([]checkFile, 0, len(results))}
	for _, r := range results {
		f := checkFile{Name: r.Name, OK: r.Err == nil}
		if r.Err != nil {
			f.Error = r.Err.Error()
			report.Failed++
		}
		if r.Result != nil {
			if r.Result.Database != nil {
				f.Messages = len(r.Result.Database.Messages)
			}
			for _, d := range r.Result.Diagnostics {
				f.Diagnostics = append(f.Diagnostics, diagnosticJSON{
					Severity: d.Severity.String(),
					Code:     d.Code,
					Message:  d.Message,
					Entity:   d.Entity,
					Line:     d.Line,
					Column:   d.Column,
				})
			}
		}
		report.Files = append(report.Files, f)
	}
	return report
}

func (c *cli) printCheckReport(results []godbc.BatchResult, report checkReport) {
	for i, r := range results {
		if r.Result != nil {
			c.printDiagnostics(r.Name, r.Result.Diagnostics)
		}
		f := report.Files[i]
		if f.OK {
			_, _ = fmt.Fprintf(c.stdout, "ok    %s (%d messages, %d diagnostics)\n",
				f.Name, f.Messages, len(f.Diagnostics))
		} else {
			_, _ = fmt.Fprintf(c.stdout, "FAIL  %s: %s\n", f.Name, f.Error)
		}
	}
	_, _ = fmt.Fprintf(c.stdout, "\n%d checked, %d failed\n", len(results), report.Failed)
}
