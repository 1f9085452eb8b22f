package serialization

import (
	"reflect"

	"github.com/glimte/mmate-envelope/contracts"
)

// PayloadSerializer encodes a single message payload and maps runtime types
// to stable contract names. Implementations used concurrently by a codec must
// be safe for concurrent use.
type PayloadSerializer interface {
	// Serialize encodes value
	Serialize(value any) ([]byte, error)

	// Deserialize decodes data into a new value of type t
	Deserialize(data []byte, t reflect.Type) (any, error)

	// ContractNameForType returns the contract name for t, if known
	ContractNameForType(t reflect.Type) (string, bool)

	// TypeForContractName returns the runtime type for a contract name, if known
	TypeForContractName(name string) (reflect.Type, bool)
}

// EnvelopeSerializer encodes the metadata section of an envelope.
type EnvelopeSerializer interface {
	// SerializeMetadata encodes the envelope contract
	SerializeMetadata(c *contracts.EnvelopeContract) ([]byte, error)

	// DeserializeMetadata decodes an envelope contract
	DeserializeMetadata(data []byte) (*contracts.EnvelopeContract, error)
}

// newValue allocates a value for t and returns the pointer to decode into and
// a function producing the decoded result. Pointer types decode to pointers,
// other types decode to values.
func newValue(t reflect.Type) (target any, result func() any) {
	if t.Kind() == reflect.Ptr {
		ptr := reflect.New(t.Elem())
		return ptr.Interface(), func() any { return ptr.Interface() }
	}
	ptr := reflect.New(t)
	return ptr.Interface(), func() any { return ptr.Elem().Interface() }
}
