// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config supplies command-line flag defaults from a YAML file.
//
// Top-level keys set flags by their long name, for example
//
//	log-level: debug
//	outfile: results/measurement.json
//
// and a key naming a subcommand holds flags that apply only to that
// subcommand:
//
//	csv:
//	  better: desc
//	upload:
//	  bucket: perf-results
//
// Flags given on the command line always take precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when no --config flag is
// given. A missing file is not an error.
const DefaultPath = "~/.benchmeasure.yaml"

// YAML is a kong.ConfigurationLoader for YAML files.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return resolver(values), nil
}

type resolver map[string]any

// Validate rejects keys that name neither a flag nor a command.
func (r resolver) Validate(app *kong.Application) error {
	known := map[string]map[string]bool{"": flagNames(app.Node)}
	var walk func(n *kong.Node)
	walk = func(n *kong.Node) {
		for _, child := range n.Children {
			if child.Type != kong.CommandNode {
				continue
			}
			flags := flagNames(child)
			known[child.Name] = flags
			for name := range flags {
				known[""][name] = true
			}
			walk(child)
		}
	}
	walk(app.Node)

	var unknown []string
	for key, v := range r {
		flags, isCmd := known[key]
		if !isCmd {
			if !known[""][key] {
				unknown = append(unknown, key)
			}
			continue
		}
		section, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("config: %q must be a mapping of flags", key)
		}
		for name := range section {
			if !flags[name] {
				unknown = append(unknown, key+"."+name)
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("config: unknown keys %s", strings.Join(unknown, ", "))
	}
	return nil
}

func flagNames(n *kong.Node) map[string]bool {
	names := make(map[string]bool)
	for _, f := range n.AllFlags(false) {
		for _, flag := range f {
			names[flag.Name] = true
		}
	}
	return names
}

// Resolve looks a flag up in the section of the command being run,
// then at the top level.
func (r resolver) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if parent != nil && parent.Command != nil {
		if section, ok := r[parent.Command.Name].(map[string]any); ok {
			if v, ok := section[flag.Name]; ok {
				return v, nil
			}
		}
	}
	if v, ok := r[flag.Name]; ok {
		if _, section := v.(map[string]any); !section {
			return v, nil
		}
	}
	return nil, nil
}
