package envelope

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrder struct {
	OrderID string
	Amount  int
}

type testShipment struct {
	Carrier string
}

func TestBuilder(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }

	t.Run("generates uuid and uses clock", func(t *testing.T) {
		env := NewBuilder(WithClock(clock)).Build()
		_, err := uuid.Parse(env.ID())
		assert.NoError(t, err)
		assert.Equal(t, fixed, env.CreatedOn())
		assert.False(t, env.HasDeliveryDelay())
		assert.Equal(t, 0, env.Len())
	})

	t.Run("indexes messages in order", func(t *testing.T) {
		env := NewBuilder(WithID("env-1")).
			AddMessage(testOrder{OrderID: "o1"}, Attr("k", "v")).
			AddMessages(testShipment{Carrier: "ups"}, testOrder{OrderID: "o2"}).
			Build()

		msgs := env.Messages()
		require.Len(t, msgs, 3)
		for i, m := range msgs {
			assert.Equal(t, i, m.Index())
			assert.Equal(t, KindTyped, m.Kind())
		}
		assert.Equal(t, reflect.TypeOf(testShipment{}), msgs[1].Type())
		assert.Equal(t, msgs[0].Type(), msgs[2].Type())
		s, _ := msgs[0].Attributes().String("k")
		assert.Equal(t, "v", s)
	})

	t.Run("delay is relative to creation", func(t *testing.T) {
		env := NewBuilder(WithCreatedOn(fixed), WithDelay(time.Minute)).Build()
		assert.True(t, env.HasDeliveryDelay())
		assert.Equal(t, fixed.Add(time.Minute), env.DeliverOn())
	})

	t.Run("deliver on normalized to utc", func(t *testing.T) {
		local := fixed.In(time.FixedZone("CET", 3600))
		env := NewBuilder(WithCreatedOn(local), WithDeliverOn(local.Add(time.Hour))).Build()
		assert.Equal(t, time.UTC, env.CreatedOn().Location())
		assert.Equal(t, time.UTC, env.DeliverOn().Location())
		assert.True(t, env.DeliverOn().Equal(fixed.Add(time.Hour)))
	})

	t.Run("envelope attributes", func(t *testing.T) {
		env := NewBuilder(
			WithAttribute("trace-id", "t1"),
			WithAttributes(Attr("tenant", "acme"), Attr("trace-id", "t2")),
		).Build()
		assert.Equal(t, []string{"trace-id", "tenant"}, env.Attributes().Keys())
		s, _ := env.Attributes().String("trace-id")
		assert.Equal(t, "t2", s)
	})

	t.Run("messages accessor returns a copy", func(t *testing.T) {
		env := NewBuilder().AddMessage(testOrder{OrderID: "o1"}).Build()
		msgs := env.Messages()
		msgs[0] = Message{}
		m, ok := env.Message(0)
		require.True(t, ok)
		assert.Equal(t, testOrder{OrderID: "o1"}, m.Value())
		_, ok = env.Message(1)
		assert.False(t, ok)
	})
}

func TestRawMessage(t *testing.T) {
	payload := []byte("opaque")
	m := RawMessage(2, "Unknown", payload, NewAttributes(Attr("a", "b")), nil)
	payload[0] = 'X'

	assert.True(t, m.IsRaw())
	assert.Equal(t, "raw", m.Kind().String())
	assert.Equal(t, []byte("opaque"), m.Raw())
	assert.Nil(t, m.Value())
	assert.Nil(t, m.Type())
	assert.Equal(t, "Unknown", m.ContractName())

	env := New("e", []Message{NewMessage(testOrder{}), m}, Attributes{}, time.Now(), time.Time{})
	raw := env.RawMessages()
	require.Len(t, raw, 1)
	assert.Equal(t, 1, raw[0].Index())
}

func TestReferenceValidate(t *testing.T) {
	assert.NoError(t, Reference{EnvelopeID: "e", Container: "c", Location: "l"}.Validate())
	assert.NoError(t, Reference{}.Validate())

	err := Reference{EnvelopeID: "e", Container: "c\r\nx", Location: "l"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Contains(t, err.Error(), "container")

	t.Run("names the first bad field every time", func(t *testing.T) {
		ref := Reference{EnvelopeID: "e\r\n", Container: "c\r\n", Location: "l\r\n"}
		for i := 0; i < 50; i++ {
			err := ref.Validate()
			require.ErrorIs(t, err, ErrInvalidReference)
			assert.Contains(t, err.Error(), "envelope id")
		}

		err := Reference{EnvelopeID: "e", Container: "c", Location: "l\r\n"}.Validate()
		assert.Contains(t, err.Error(), "location")
	})
}
