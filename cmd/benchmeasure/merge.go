// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/benchmeasure/measfmt"
	"golang.org/x/benchmeasure/measmerge"
	"golang.org/x/benchmeasure/measure"
)

// outputFlags are shared by every format subcommand.
type outputFlags struct {
	Files     []string `arg:"" name:"infile" help:"Files containing the test data."`
	Outfile   string   `short:"o" default:"measurement.json" help:"File to write the measurement document to." placeholder:"FILE"`
	Append    bool     `help:"Merge into the document already at the output path."`
	Schema    string   `help:"JSON schema to validate the output with, instead of the built-in one." placeholder:"FILE"`
	MaxValues int      `default:"${maxValues}" help:"Maximum number of values per test and metric." hidden:""`
}

func (o *outputFlags) options(f measfmt.Format, dropFirst bool) measmerge.Options {
	return measmerge.Options{
		Files:     o.Files,
		Format:    f,
		Outfile:   o.Outfile,
		Append:    o.Append,
		DropFirst: dropFirst,
		MaxValues: o.MaxValues,
		Schema:    o.Schema,
	}
}

type dropFlag struct {
	DropFirstValue bool `help:"Discard the first value of each test, such as a warm-up run."`
}

type betterFlag struct {
	Better string `required:"" enum:"asc,desc" help:"Whether greater (asc) or smaller (desc) values are better."`
}

func run(e *env, o outputFlags, f measfmt.Format, dropFirst bool) error {
	_, err := measmerge.Run(e.ctx, e.fsys, o.options(f, dropFirst))
	return err
}

type bdnCmd struct {
	outputFlags
}

func (c *bdnCmd) Run(e *env) error {
	return run(e, c.outputFlags, measfmt.BenchmarkDotNet{}, false)
}

type csvCmd struct {
	outputFlags
	dropFlag
	betterFlag
	Metric    string `short:"m" required:"" help:"Metric measured by the values in the files."`
	Unit      string `short:"u" required:"" help:"Unit of the values in the files."`
	HasHeader bool   `help:"Skip the first line of each file."`
}

func (c *csvCmd) Run(e *env) error {
	f := measfmt.CSV{Metric: c.Metric, Unit: c.Unit, Better: c.Better, HasHeader: c.HasHeader}
	return run(e, c.outputFlags, f, c.DropFirstValue)
}

type counterFlags struct {
	outputFlags
	dropFlag
	betterFlag
	Counter []string `short:"c" help:"Name of a counter to extract. Repeat to extract several; all counters are extracted by default."`
}

type scenarioCounterCmd struct {
	counterFlags
}

func (c *scenarioCounterCmd) Run(e *env) error {
	f := measfmt.Counters{Better: c.Better, Counters: c.Counter}
	return run(e, c.outputFlags, f, c.DropFirstValue)
}

type legacyCounterCmd struct {
	counterFlags
}

func (c *legacyCounterCmd) Run(e *env) error {
	f := measfmt.Counters{Better: c.Better, Counters: c.Counter, Legacy: true}
	return run(e, c.outputFlags, f, c.DropFirstValue)
}

type xunitCmd struct {
	outputFlags
	dropFlag
	betterFlag
}

func (c *xunitCmd) Run(e *env) error {
	return run(e, c.outputFlags, measfmt.XUnit{Better: c.Better}, c.DropFirstValue)
}

type scenarioCmd struct {
	outputFlags
	dropFlag
	betterFlag
	NamespaceSeparator string `help:"Character that splits namespaces into nested tests." placeholder:"CHAR"`
}

// Validate is called by kong after parsing.
func (c *scenarioCmd) Validate() error {
	if c.NamespaceSeparator != "" && utf8.RuneCountInString(c.NamespaceSeparator) != 1 {
		return fmt.Errorf("invalid separator specified %q: must be a single character", c.NamespaceSeparator)
	}
	return nil
}

func (c *scenarioCmd) Run(e *env) error {
	f := measfmt.ScenarioXUnit{Better: c.Better, Separator: c.NamespaceSeparator}
	return run(e, c.outputFlags, f, c.DropFirstValue)
}

type mobileCmd struct {
	outputFlags
	dropFlag
}

func (c *mobileCmd) Run(e *env) error {
	return run(e, c.outputFlags, measfmt.Mobile{}, c.DropFirstValue)
}

// vars are interpolated into flag defaults and help.
var vars = map[string]string{
	"maxValues": fmt.Sprint(measure.DefaultMaxValues),
}
