// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aclements/go-moremath/stats"

	"golang.org/x/benchmeasure/benchunit"
	"golang.org/x/benchmeasure/measdoc"
	"golang.org/x/benchmeasure/measure"
)

type showCmd struct {
	Filter string   `help:"Only show tests whose path starts with this prefix." placeholder:"PREFIX"`
	Files  []string `arg:"" name:"measurement" help:"Measurement documents to summarize."`
}

func (c *showCmd) Run(e *env) error {
	for i, path := range c.Files {
		tree, err := measdoc.Load(e.fsys, path, measure.NewRegistry(), 0)
		if err != nil {
			return err
		}
		if len(c.Files) > 1 {
			if i > 0 {
				fmt.Fprintln(e.stdout)
			}
			fmt.Fprintf(e.stdout, "== %s ==\n", path)
		}
		if err := showTree(e.stdout, tree, c.Filter); err != nil {
			return err
		}
	}
	return nil
}

// showTree prints every test of tree that has results, followed by
// one line per result giving the sample count, minimum, median and
// maximum in a common display scale.
func showTree(w io.Writer, tree *measure.Tree, filter string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	err := tree.Walk(func(path []string, test *measure.Test) error {
		if len(test.Results) == 0 {
			return nil
		}
		name := strings.Join(path, "/")
		if !strings.HasPrefix(name, filter) {
			return nil
		}
		fmt.Fprintf(tw, "%s\n", name)
		for _, r := range test.Results {
			fmt.Fprintf(tw, "  %s\n", summarize(r))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

func summarize(r *measure.Result) string {
	better := "lower is better"
	if r.Metric.GreaterIsBetter {
		better = "higher is better"
	}
	if len(r.Values) == 0 {
		return fmt.Sprintf("%s\t(%s)\tn=0\t\t\t\t%s", r.Metric.Name, r.Metric.Unit, better)
	}
	s := stats.Sample{Xs: r.Values}
	min, max := s.Bounds()
	median := s.Quantile(0.5)
	col, unit := benchunit.FormatColumn([]float64{min, median, max}, r.Metric.Unit)
	return fmt.Sprintf("%s\t(%s)\tn=%d\tmin %s\tmedian %s\tmax %s\t%s", r.Metric.Name, unit, len(r.Values), col[0], col[1], col[2], better)
}
