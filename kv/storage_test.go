package kv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("get is case-insensitive", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("HELLO")
		require.True(t, found)
		require.Equal(t, "World", value)
		require.True(t, kv.Has("lorem"))
		require.False(t, kv.Has("Content-Length"))
		require.Equal(t, "default", kv.ValueOr("missing", "default"))
	})

	t.Run("values keep duplicates in order", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, []string{"World", "Pavlo"}, slices.Collect(kv.Values("hello")))
		require.Empty(t, slices.Collect(kv.Values("missing")))
	})

	t.Run("pairs keep insertion order", func(t *testing.T) {
		var keys []string
		for key := range getHeaders().Pairs() {
			keys = append(keys, key)
		}

		require.Equal(t, []string{"Foo", "Hello", "Lorem", "hello"}, keys)
	})

	t.Run("clear", func(t *testing.T) {
		kv := getHeaders().Clear()
		require.True(t, kv.Empty())
		kv.Add("a", "b")
		require.Equal(t, 1, kv.Len())
	})

	t.Run("clone doesn't alias", func(t *testing.T) {
		buff := []byte("Key")
		kv := New().Add(string(buff[:1]), "v")
		c := kv.Clone()
		require.Equal(t, kv.Expose(), c.Expose())
	})
}
