package serialization

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/glimte/mmate-envelope/contracts"
)

// JSONPayloadSerializer implements PayloadSerializer using encoding/json and
// a TypeRegistry for contract names.
type JSONPayloadSerializer struct {
	registry TypeRegistry
}

// PayloadOption configures a payload serializer
type PayloadOption func(*payloadConfig)

type payloadConfig struct {
	registry TypeRegistry
}

// WithTypeRegistry sets the type registry
func WithTypeRegistry(registry TypeRegistry) PayloadOption {
	return func(c *payloadConfig) {
		c.registry = registry
	}
}

func newPayloadConfig(opts []PayloadOption) payloadConfig {
	cfg := payloadConfig{registry: NewTypeRegistry()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewJSONPayloadSerializer creates a new JSON payload serializer
func NewJSONPayloadSerializer(opts ...PayloadOption) *JSONPayloadSerializer {
	cfg := newPayloadConfig(opts)
	return &JSONPayloadSerializer{registry: cfg.registry}
}

// Registry returns the type registry backing the serializer
func (s *JSONPayloadSerializer) Registry() TypeRegistry {
	return s.registry
}

// Serialize encodes value as JSON
func (s *JSONPayloadSerializer) Serialize(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}

// Deserialize decodes JSON data into a new value of type t
func (s *JSONPayloadSerializer) Deserialize(data []byte, t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("payload type cannot be nil")
	}
	target, result := newValue(t)
	if err := json.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload into %v: %w", t, err)
	}
	return result(), nil
}

// ContractNameForType returns the contract name registered for t
func (s *JSONPayloadSerializer) ContractNameForType(t reflect.Type) (string, bool) {
	return s.registry.ContractNameForType(t)
}

// TypeForContractName returns the type registered under name
func (s *JSONPayloadSerializer) TypeForContractName(name string) (reflect.Type, bool) {
	return s.registry.TypeForContractName(name)
}

// JSONEnvelopeSerializer implements EnvelopeSerializer using JSON. It is
// mostly useful for debugging, since the metadata stays human readable.
type JSONEnvelopeSerializer struct{}

// NewJSONEnvelopeSerializer creates a new JSON envelope serializer
func NewJSONEnvelopeSerializer() JSONEnvelopeSerializer {
	return JSONEnvelopeSerializer{}
}

// SerializeMetadata encodes the contract as JSON
func (JSONEnvelopeSerializer) SerializeMetadata(c *contracts.EnvelopeContract) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("envelope contract cannot be nil")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope metadata: %w", err)
	}
	return data, nil
}

// DeserializeMetadata decodes a JSON envelope contract
func (JSONEnvelopeSerializer) DeserializeMetadata(data []byte) (*contracts.EnvelopeContract, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("envelope metadata cannot be empty")
	}
	var c contracts.EnvelopeContract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope metadata: %w", err)
	}
	return &c, nil
}
