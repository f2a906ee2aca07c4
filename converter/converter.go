// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package converter provides the converters an httpcall.Call uses to
// decode a successful response body into a typed value.
//
// A converter is given the body as a forward-only stream. It is invoked
// at most once per response and never for 204 or 205 responses. The
// caller closes the body; converters must not.
package converter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// A Converter decodes a response body stream into a value of type T.
//
// Implementations of Converter must be safe for concurrent use by
// multiple goroutines.
type Converter[T any] interface {
	Convert(r io.Reader) (T, error)
}

// The Func type is an adapter to allow the use of ordinary functions
// as converters.
type Func[T any] func(r io.Reader) (T, error)

// Convert calls f(r).
func (f Func[T]) Convert(r io.Reader) (T, error) {
	return f(r)
}

// ErrEmptyDocument is returned by the YAML converter when the body
// contains no document.
var ErrEmptyDocument = errors.New("httpcall/converter: empty document")

// JSON returns a converter which decodes a single JSON value into a T
// using encoding/json.
func JSON[T any]() Converter[T] {
	return Func[T](func(r io.Reader) (T, error) {
		var v T
		if err := json.NewDecoder(r).Decode(&v); err != nil {
			return v, fmt.Errorf("httpcall/converter: json: %w", err)
		}
		return v, nil
	})
}

// YAML returns a converter which decodes a single YAML document into a
// T.
func YAML[T any]() Converter[T] {
	return Func[T](func(r io.Reader) (T, error) {
		var v T
		err := yaml.NewDecoder(r).Decode(&v)
		if err == io.EOF {
			return v, ErrEmptyDocument
		} else if err != nil {
			return v, fmt.Errorf("httpcall/converter: yaml: %w", err)
		}
		return v, nil
	})
}

// String is a converter which reads the whole body into a string.
var String Converter[string] = Func[string](func(r io.Reader) (string, error) {
	var sb strings.Builder
	_, err := io.Copy(&sb, r)
	return sb.String(), err
})

// Bytes is a converter which reads the whole body into a byte slice.
var Bytes Converter[[]byte] = Func[[]byte](io.ReadAll)

// Discard is a converter which reads and discards the whole body.
var Discard Converter[struct{}] = Func[struct{}](func(r io.Reader) (struct{}, error) {
	_, err := io.Copy(io.Discard, r)
	return struct{}{}, err
})

// GJSON returns a converter which reads the whole body as JSON and
// extracts the value at path using gjson path syntax, for example
// "subjects.#.title". An empty path selects the whole document.
//
// The converter fails if the body is not valid JSON or nothing exists
// at path.
func GJSON(path string) Converter[gjson.Result] {
	return Func[gjson.Result](func(r io.Reader) (gjson.Result, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return gjson.Result{}, err
		}
		if !gjson.ValidBytes(data) {
			return gjson.Result{}, errors.New("httpcall/converter: invalid JSON")
		}
		if path == "" {
			return gjson.ParseBytes(data), nil
		}
		result := gjson.GetBytes(data, path)
		if !result.Exists() {
			return gjson.Result{}, fmt.Errorf("httpcall/converter: path %q not found", path)
		}
		return result, nil
	})
}
