package envelope

import (
	"math"
	"testing"
	"time"

	"github.com/glimte/mmate-envelope/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesToContract(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 30, 0, 500, time.UTC)

	tests := []struct {
		name     string
		value    any
		expected contracts.AttributeContract
	}{
		{"string", "t1", contracts.AttributeContract{Key: "k", Type: contracts.AttributeString, StringValue: "t1"}},
		{"int", 42, contracts.AttributeContract{Key: "k", Type: contracts.AttributeInt, NumberValue: 42}},
		{"int32", int32(-7), contracts.AttributeContract{Key: "k", Type: contracts.AttributeInt, NumberValue: -7}},
		{"uint16", uint16(9), contracts.AttributeContract{Key: "k", Type: contracts.AttributeInt, NumberValue: 9}},
		{"float", 1.5, contracts.AttributeContract{Key: "k", Type: contracts.AttributeFloat, FloatValue: 1.5}},
		{"bool true", true, contracts.AttributeContract{Key: "k", Type: contracts.AttributeBool, NumberValue: 1}},
		{"bool false", false, contracts.AttributeContract{Key: "k", Type: contracts.AttributeBool}},
		{"time", created, contracts.AttributeContract{Key: "k", Type: contracts.AttributeTime, NumberValue: created.Unix(), Nanos: int32(created.Nanosecond())}},
		{"bytes", []byte{0, 1}, contracts.AttributeContract{Key: "k", Type: contracts.AttributeBytes, BytesValue: []byte{0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AttributesToContract(NewAttributes(Attr("k", tt.value)))
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, tt.expected, out[0])
		})
	}

	t.Run("empty yields nil", func(t *testing.T) {
		out, err := AttributesToContract(Attributes{})
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("rejects unsupported kinds", func(t *testing.T) {
		_, err := AttributesToContract(NewAttributes(Attr("m", map[string]int{"a": 1})))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedAttribute)

		var attrErr *AttributeError
		require.ErrorAs(t, err, &attrErr)
		assert.Equal(t, "m", attrErr.Key)
	})

	t.Run("rejects overflowing unsigned", func(t *testing.T) {
		_, err := AttributesToContract(NewAttributes(Attr("u", uint64(math.MaxUint64))))
		assert.ErrorIs(t, err, ErrUnsupportedAttribute)
	})
}

func TestAttributesFromContract(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := NewAttributes(
		Attr("trace-id", "t1"),
		Attr("attempt", int64(3)),
		Attr("ratio", 0.25),
		Attr("urgent", true),
		Attr("at", created),
		Attr("blob", []byte("raw")),
	)

	cs, err := AttributesToContract(in)
	require.NoError(t, err)

	out, err := AttributesFromContract(cs)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, in.Keys(), out.Keys())

	t.Run("widens integers", func(t *testing.T) {
		cs, err := AttributesToContract(NewAttributes(Attr("n", 5)))
		require.NoError(t, err)
		out, err := AttributesFromContract(cs)
		require.NoError(t, err)
		v, _ := out.Get("n")
		assert.Equal(t, int64(5), v)
	})

	t.Run("rejects unknown wire type", func(t *testing.T) {
		_, err := AttributesFromContract([]contracts.AttributeContract{{Key: "x", Type: 200}})
		assert.ErrorIs(t, err, ErrUnsupportedAttribute)
	})
}

func TestTimeAttributeRange(t *testing.T) {
	instants := map[string]time.Time{
		"before 1678":  time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
		"after 2262":   time.Date(2300, 1, 1, 0, 0, 0, 123, time.UTC),
		"unix epoch":   time.Unix(0, 0).UTC(),
		"before epoch": time.Date(1969, 12, 31, 23, 59, 59, 999999999, time.UTC),
		"zero time":    {},
		"far future":   time.Date(9999, 12, 31, 23, 59, 59, 1, time.UTC),
	}

	for name, at := range instants {
		t.Run(name, func(t *testing.T) {
			cs, err := AttributesToContract(NewAttributes(Attr("at", at)))
			require.NoError(t, err)

			out, err := AttributesFromContract(cs)
			require.NoError(t, err)
			v, ok := out.Get("at")
			require.True(t, ok)
			assert.True(t, at.Equal(v.(time.Time)), "got %v, want %v", v, at)
		})
	}

	t.Run("rejects out of range nanos", func(t *testing.T) {
		_, err := AttributesFromContract([]contracts.AttributeContract{
			{Key: "at", Type: contracts.AttributeTime, NumberValue: 1, Nanos: 1e9},
		})
		assert.ErrorIs(t, err, ErrUnsupportedAttribute)
	})
}
