package codec

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/stretchr/testify/mock"

	"github.com/glimte/mmate-envelope/contracts"
	"github.com/glimte/mmate-envelope/serialization"
)

type Money struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

type OrderPlaced struct {
	OrderID string   `json:"orderId"`
	Lines   []string `json:"lines"`
}

// MoneyV2 shares Money's contract name but cannot read its payload.
type MoneyV2 struct {
	Amount string `json:"amount"`
}

func newRegistry(pairs map[string]any) *serialization.DefaultTypeRegistry {
	return serialization.NewTypeRegistry().MustRegister(pairs)
}

func fullRegistry() *serialization.DefaultTypeRegistry {
	return newRegistry(map[string]any{
		"Money":       Money{},
		"OrderPlaced": OrderPlaced{},
	})
}

func newTestCodec(registry serialization.TypeRegistry, opts ...Option) *Codec {
	return New(
		serialization.NewJSONPayloadSerializer(serialization.WithTypeRegistry(registry)),
		serialization.NewCBOREnvelopeSerializer(),
		opts...,
	)
}

// MockPayloadSerializer is a mock implementation of serialization.PayloadSerializer
type MockPayloadSerializer struct {
	mock.Mock
}

func (m *MockPayloadSerializer) Serialize(value any) ([]byte, error) {
	args := m.Called(value)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockPayloadSerializer) Deserialize(data []byte, t reflect.Type) (any, error) {
	args := m.Called(data, t)
	return args.Get(0), args.Error(1)
}

func (m *MockPayloadSerializer) ContractNameForType(t reflect.Type) (string, bool) {
	args := m.Called(t)
	return args.String(0), args.Bool(1)
}

func (m *MockPayloadSerializer) TypeForContractName(name string) (reflect.Type, bool) {
	args := m.Called(name)
	t, _ := args.Get(0).(reflect.Type)
	return t, args.Bool(1)
}

// MockEnvelopeSerializer is a mock implementation of serialization.EnvelopeSerializer
type MockEnvelopeSerializer struct {
	mock.Mock
}

func (m *MockEnvelopeSerializer) SerializeMetadata(c *contracts.EnvelopeContract) ([]byte, error) {
	args := m.Called(c)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockEnvelopeSerializer) DeserializeMetadata(data []byte) (*contracts.EnvelopeContract, error) {
	args := m.Called(data)
	c, _ := args.Get(0).(*contracts.EnvelopeContract)
	return c, args.Error(1)
}

type recordingHandler struct {
	fn func(slog.Record)
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.fn(r)
	return nil
}

func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h recordingHandler) WithGroup(string) slog.Handler { return h }
