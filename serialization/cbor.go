package serialization

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/glimte/mmate-envelope/contracts"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// contract always produces identical bytes. Times keep nanosecond precision.
var encMode cbor.EncMode

// decMode ignores unknown fields so newer writers can add metadata fields.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("serialization: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("serialization: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORPayloadSerializer implements PayloadSerializer using CBOR.
type CBORPayloadSerializer struct {
	registry TypeRegistry
}

// NewCBORPayloadSerializer creates a new CBOR payload serializer
func NewCBORPayloadSerializer(opts ...PayloadOption) *CBORPayloadSerializer {
	cfg := newPayloadConfig(opts)
	return &CBORPayloadSerializer{registry: cfg.registry}
}

// Registry returns the type registry backing the serializer
func (s *CBORPayloadSerializer) Registry() TypeRegistry {
	return s.registry
}

// Serialize encodes value as CBOR
func (s *CBORPayloadSerializer) Serialize(value any) ([]byte, error) {
	data, err := encMode.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}

// Deserialize decodes CBOR data into a new value of type t
func (s *CBORPayloadSerializer) Deserialize(data []byte, t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("payload type cannot be nil")
	}
	target, result := newValue(t)
	if err := decMode.Unmarshal(data, target); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload into %v: %w", t, err)
	}
	return result(), nil
}

// ContractNameForType returns the contract name registered for t
func (s *CBORPayloadSerializer) ContractNameForType(t reflect.Type) (string, bool) {
	return s.registry.ContractNameForType(t)
}

// TypeForContractName returns the type registered under name
func (s *CBORPayloadSerializer) TypeForContractName(name string) (reflect.Type, bool) {
	return s.registry.TypeForContractName(name)
}

// CBOREnvelopeSerializer implements EnvelopeSerializer using CBOR. It is the
// default metadata encoding.
type CBOREnvelopeSerializer struct{}

// NewCBOREnvelopeSerializer creates a new CBOR envelope serializer
func NewCBOREnvelopeSerializer() CBOREnvelopeSerializer {
	return CBOREnvelopeSerializer{}
}

// SerializeMetadata encodes the contract as CBOR
func (CBOREnvelopeSerializer) SerializeMetadata(c *contracts.EnvelopeContract) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("envelope contract cannot be nil")
	}
	data, err := encMode.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope metadata: %w", err)
	}
	return data, nil
}

// DeserializeMetadata decodes a CBOR envelope contract. Trailing bytes after
// the contract are rejected.
func (CBOREnvelopeSerializer) DeserializeMetadata(data []byte) (*contracts.EnvelopeContract, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("envelope metadata cannot be empty")
	}
	var c contracts.EnvelopeContract
	if err := decMode.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope metadata: %w", err)
	}
	return &c, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
