// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonArrayStream walks a top-level JSON object and decodes the
// elements of one of its array members one at a time. Other members
// are skipped without being retained.
type jsonArrayStream struct {
	d        *json.Decoder
	fileName string
	key      string

	state int
}

const (
	jsonStart = iota // before the opening brace
	jsonKeys         // between top-level members
	jsonArray        // inside the array member
	jsonDone
)

func newJSONArrayStream(r io.Reader, fileName, key string) *jsonArrayStream {
	return &jsonArrayStream{d: json.NewDecoder(r), fileName: fileName, key: key}
}

// next decodes the next array element into v. It returns io.EOF once
// the document has been read completely.
func (s *jsonArrayStream) next(v any) error {
	for {
		switch s.state {
		case jsonStart:
			if err := s.expect(json.Delim('{')); err != nil {
				return err
			}
			s.state = jsonKeys
		case jsonKeys:
			if !s.d.More() {
				if err := s.expect(json.Delim('}')); err != nil {
					return err
				}
				s.state = jsonDone
				continue
			}
			tok, err := s.d.Token()
			if err != nil {
				return s.wrap(err)
			}
			if key, _ := tok.(string); key != s.key {
				var skip json.RawMessage
				if err := s.d.Decode(&skip); err != nil {
					return s.wrap(err)
				}
				continue
			}
			if err := s.expect(json.Delim('[')); err != nil {
				return err
			}
			s.state = jsonArray
		case jsonArray:
			if !s.d.More() {
				if err := s.expect(json.Delim(']')); err != nil {
					return err
				}
				s.state = jsonKeys
				continue
			}
			if err := s.d.Decode(v); err != nil {
				return s.wrap(err)
			}
			return nil
		case jsonDone:
			return io.EOF
		}
	}
}

func (s *jsonArrayStream) expect(want json.Delim) error {
	tok, err := s.d.Token()
	if err != nil {
		return s.wrap(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return s.errorf("expected %q, found %v", want, tok)
	}
	return nil
}

func (s *jsonArrayStream) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &SyntaxError{FileName: s.fileName, Msg: fmt.Sprintf("offset %d: %s", s.d.InputOffset(), msg)}
}

func (s *jsonArrayStream) wrap(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return s.errorf("unexpected end of document")
	}
	return s.errorf("%v", err)
}
