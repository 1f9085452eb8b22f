package envelope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		a := NewAttributes(Attr("z", 1), Attr("a", 2), Attr("m", 3))
		assert.Equal(t, []string{"z", "a", "m"}, a.Keys())
	})

	t.Run("replaces repeated key in place", func(t *testing.T) {
		a := NewAttributes(Attr("a", 1), Attr("b", 2), Attr("a", 3))
		assert.Equal(t, []string{"a", "b"}, a.Keys())
		v, ok := a.Get("a")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("with does not mutate receiver", func(t *testing.T) {
		a := NewAttributes(Attr("a", "x"))
		b := a.With("b", "y")
		assert.Equal(t, 1, a.Len())
		assert.Equal(t, 2, b.Len())
	})

	t.Run("copies byte slices", func(t *testing.T) {
		raw := []byte{1, 2, 3}
		a := NewAttributes(Attr("blob", raw))
		raw[0] = 9
		v, _ := a.Get("blob")
		assert.Equal(t, []byte{1, 2, 3}, v)

		got := v.([]byte)
		got[1] = 9
		again, _ := a.Get("blob")
		assert.Equal(t, []byte{1, 2, 3}, again)
	})

	t.Run("string accessor", func(t *testing.T) {
		a := NewAttributes(Attr("s", "v"), Attr("n", 1))
		s, ok := a.String("s")
		assert.True(t, ok)
		assert.Equal(t, "v", s)
		_, ok = a.String("n")
		assert.False(t, ok)
		_, ok = a.String("missing")
		assert.False(t, ok)
	})

	t.Run("equal compares order and values", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		a := NewAttributes(Attr("t", now), Attr("b", []byte("x")))
		b := NewAttributes(Attr("t", now.In(time.FixedZone("X", 3600))), Attr("b", []byte("x")))
		c := NewAttributes(Attr("b", []byte("x")), Attr("t", now))
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
	})
}
