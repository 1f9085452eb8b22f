package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	t.Run("encodes to fixed size", func(t *testing.T) {
		h := NewHeader(1234)
		assert.Len(t, h.Bytes(), HeaderSize)
	})

	t.Run("round trips", func(t *testing.T) {
		h := NewHeader(987654321)
		got, err := ReadHeader(h.Bytes())
		require.NoError(t, err)
		assert.Equal(t, h, got)
		assert.True(t, got.IsCurrent())
	})

	t.Run("writes little endian version first", func(t *testing.T) {
		b := NewHeader(0).Bytes()
		assert.Equal(t, []byte{0x5D, 0x7B, 0xCE, 0x77}, b[0:4])
	})

	t.Run("padding is zero", func(t *testing.T) {
		b := NewHeader(42).Bytes()
		assert.Equal(t, make([]byte, HeaderSize-20), b[20:])
	})

	t.Run("append keeps prefix", func(t *testing.T) {
		out := NewHeader(7).AppendTo([]byte("xy"))
		assert.Equal(t, []byte("xy"), out[:2])
		assert.Len(t, out, HeaderSize+2)
	})

	t.Run("rejects short buffer", func(t *testing.T) {
		_, err := ReadHeader(make([]byte, HeaderSize-1))
		assert.ErrorIs(t, err, ErrShortHeader)
	})

	t.Run("reports unknown version", func(t *testing.T) {
		b := NewHeader(0).Bytes()
		b[0] ^= 0xFF
		h, err := ReadHeader(b)
		require.NoError(t, err)
		assert.False(t, h.IsCurrent())
	})
}

func TestEnvelopeContractPayloadLength(t *testing.T) {
	c := &EnvelopeContract{
		Messages: []MessageContract{
			{ContractName: "a", ContentLength: 10, ContentOffset: 0},
			{ContractName: "b", ContentLength: 5, ContentOffset: 10},
		},
	}
	assert.Equal(t, int64(15), c.PayloadLength())
	assert.Equal(t, int64(15), c.Messages[1].End())
}

func TestAttributeTypeString(t *testing.T) {
	assert.Equal(t, "string", AttributeString.String())
	assert.Equal(t, "bytes", AttributeBytes.String())
	assert.Equal(t, "AttributeType(99)", AttributeType(99).String())
}
