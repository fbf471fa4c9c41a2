// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchmeasure converts benchmark results into measurement documents.
//
// Usage:
//
//	benchmeasure <format> [flags] infile...
//	benchmeasure store [flags] measurement.json...
//	benchmeasure upload [flags] measurement.json...
//	benchmeasure show [flags] measurement.json...
//
// Each format subcommand reads one or more files of benchmark output in
// that format, merges every sample into a tree of tests keyed by name,
// and writes the tree as a JSON document (measurement.json by default)
// after validating it against the measurement schema. The formats are
//
//	structured-benchmark-json  BenchmarkDotNet full JSON export
//	csv                        rows of "test name, value"
//	xunit                      xunit.performance XML
//	scenario-xunit             scenario xunit.performance XML
//	scenario-counter-xml       scenario results with nested counters
//	legacy-counter-xml         scenario results with flat counters
//	mobile-benchmark-json      mobile benchmark runner JSON
//
// With --append, the document already at the output path is read first
// and the new samples are added to it. Nothing is written if any input
// fails to parse or validate.
//
// Store saves documents in a SQL database; upload copies them to a
// Cloud Storage bucket; show prints a summary of each result.
//
// Flag defaults may be read from a YAML file, ~/.benchmeasure.yaml or
// the file named by --config.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"golang.org/x/benchmeasure/internal/config"
	"golang.org/x/benchmeasure/internal/logging"
)

type cli struct {
	Config   kong.ConfigFlag `help:"Read flag defaults from this YAML file." placeholder:"FILE"`
	LogLevel string          `help:"Log level (debug, info, warn, error)." default:"info"`

	StructuredBenchmarkJSON bdnCmd             `cmd:"" name:"structured-benchmark-json" help:"Read BenchmarkDotNet full JSON exports."`
	CSV                     csvCmd             `cmd:"" name:"csv" help:"Read CSV files of test name and value."`
	ScenarioCounterXML      scenarioCounterCmd `cmd:"" name:"scenario-counter-xml" help:"Read scenario XML with nested counter results."`
	LegacyCounterXML        legacyCounterCmd   `cmd:"" name:"legacy-counter-xml" help:"Read scenario XML with flat counter results."`
	XUnit                   xunitCmd           `cmd:"" name:"xunit" help:"Read xunit.performance XML."`
	ScenarioXUnit           scenarioCmd        `cmd:"" name:"scenario-xunit" help:"Read scenario xunit.performance XML."`
	MobileBenchmarkJSON     mobileCmd          `cmd:"" name:"mobile-benchmark-json" help:"Read mobile benchmark runner JSON."`

	Store  storeCmd  `cmd:"" help:"Save measurement documents to a SQL database."`
	Upload uploadCmd `cmd:"" help:"Upload measurement documents to Cloud Storage."`
	Show   showCmd   `cmd:"" help:"Print a summary of measurement documents."`
}

// env is bound into every command's Run method.
type env struct {
	ctx    context.Context
	fsys   afero.Fs
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := benchmeasure(ctx, os.Stdout, os.Stderr, afero.NewOsFs(), os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func benchmeasure(ctx context.Context, stdout, stderr io.Writer, fsys afero.Fs, args []string) error {
	var c cli
	exited := false
	parser, err := kong.New(&c,
		kong.Name("benchmeasure"),
		kong.Description("Convert benchmark results into measurement documents."),
		kong.Writers(stdout, stderr),
		kong.Vars(vars),
		kong.Exit(func(int) { exited = true }),
		kong.Configuration(config.YAML, config.DefaultPath),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if exited {
		// --help was printed.
		return nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "benchmeasure: %v\n", err)
		return err
	}

	// Standard output is reserved for command output such as show.
	done := logging.Init(c.LogLevel, stderr, stderr)
	defer done()

	if err := kctx.Run(&env{ctx: ctx, fsys: fsys, stdout: stdout}); err != nil {
		zap.L().Error("Command failed", zap.String("command", kctx.Command()), zap.Error(err))
		return err
	}
	return nil
}
