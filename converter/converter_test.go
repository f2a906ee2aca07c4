// Copyright 2021 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package converter

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movie struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

func TestJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		m, err := JSON[movie]().Convert(strings.NewReader(`{"id":"1292052","title":"The Shawshank Redemption"}`))
		require.NoError(t, err)
		assert.Equal(t, movie{ID: "1292052", Title: "The Shawshank Redemption"}, m)
	})
	t.Run("syntax error", func(t *testing.T) {
		_, err := JSON[movie]().Convert(strings.NewReader(`{"id":`))
		assert.ErrorContains(t, err, "httpcall/converter: json:")
	})
	t.Run("read error surfaces", func(t *testing.T) {
		readErr := errors.New("connection reset")
		_, err := JSON[movie]().Convert(iotest.ErrReader(readErr))
		assert.ErrorIs(t, err, readErr)
	})
}

func TestYAML(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		m, err := YAML[movie]().Convert(strings.NewReader("id: \"7\"\ntitle: Spirited Away\n"))
		require.NoError(t, err)
		assert.Equal(t, movie{ID: "7", Title: "Spirited Away"}, m)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := YAML[movie]().Convert(strings.NewReader(""))
		assert.Same(t, ErrEmptyDocument, err)
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := YAML[movie]().Convert(strings.NewReader("id: [unclosed"))
		assert.ErrorContains(t, err, "httpcall/converter: yaml:")
	})
}

func TestString(t *testing.T) {
	s, err := String.Convert(strings.NewReader("hello"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestBytes(t *testing.T) {
	b, err := Bytes.Convert(strings.NewReader("hello"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
}

func TestDiscard(t *testing.T) {
	r := strings.NewReader("hello")
	_, err := Discard.Convert(r)
	assert.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestGJSON(t *testing.T) {
	const doc = `{"count":2,"subjects":[{"title":"A"},{"title":"B"}]}`
	t.Run("path", func(t *testing.T) {
		res, err := GJSON("subjects.#.title").Convert(strings.NewReader(doc))
		require.NoError(t, err)
		var titles []string
		for _, r := range res.Array() {
			titles = append(titles, r.String())
		}
		assert.Equal(t, []string{"A", "B"}, titles)
	})
	t.Run("whole document", func(t *testing.T) {
		res, err := GJSON("").Convert(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Get("count").Int())
	})
	t.Run("missing path", func(t *testing.T) {
		_, err := GJSON("total").Convert(strings.NewReader(doc))
		assert.EqualError(t, err, `httpcall/converter: path "total" not found`)
	})
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := GJSON("x").Convert(strings.NewReader("{"))
		assert.EqualError(t, err, "httpcall/converter: invalid JSON")
	})
}

func TestFunc(t *testing.T) {
	f := Func[int](func(r io.Reader) (int, error) {
		b, err := io.ReadAll(r)
		return len(b), err
	})
	n, err := f.Convert(strings.NewReader("four"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
