// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"

	"golang.org/x/benchmeasure/schemas"
)

// EmbedScheme is the URL scheme under which the default schema set is
// served to the schema compiler.
const EmbedScheme = "embed"

// A Validator checks encoded documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// A SchemaError reports a document that does not conform to the
// schema.
type SchemaError struct {
	// Location is the JSON pointer of the offending value.
	Location string
	Message  string

	Err *jsonschema.ValidationError
}

func (e *SchemaError) Error() string {
	loc := e.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("measurement document does not match schema at %s: %s", loc, e.Message)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// DefaultValidator returns a Validator for the embedded schema set.
func DefaultValidator() (*Validator, error) {
	return compile(nil, EmbedScheme+":///"+schemas.Root)
}

// NewValidator compiles the schema file at path, resolving relative
// references to sibling files through fsys. If path is empty the
// embedded schema set is used.
func NewValidator(fsys afero.Fs, path string) (*Validator, error) {
	if path == "" {
		return DefaultValidator()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return compile(fsys, u.String())
}

func compile(fsys afero.Fs, root string) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		switch u.Scheme {
		case EmbedScheme:
			return schemas.FS.Open(strings.TrimPrefix(u.Path, "/"))
		case "file":
			if fsys == nil {
				return nil, jsonschema.LoaderNotFoundError(s)
			}
			return fsys.Open(filepath.FromSlash(u.Path))
		}
		loader, ok := jsonschema.Loaders[u.Scheme]
		if !ok {
			return nil, jsonschema.LoaderNotFoundError(s)
		}
		return loader(s)
	}
	schema, err := c.Compile(root)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", root, err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks the encoded document data. It returns a
// *SchemaError if data is well-formed JSON that does not conform.
func (v *Validator) Validate(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	var doc any
	if err := d.Decode(&doc); err != nil {
		return fmt.Errorf("validating measurement document: %w", err)
	}
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validating measurement document: %w", err)
	}
	leaf := verr
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &SchemaError{Location: leaf.InstanceLocation, Message: leaf.Message, Err: verr}
}
