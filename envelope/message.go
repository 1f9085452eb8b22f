package envelope

import (
	"bytes"
	"reflect"
)

// Kind distinguishes a typed message from one whose payload was kept as raw bytes.
type Kind uint8

const (
	// KindTyped messages carry a deserialized value of a known runtime type.
	KindTyped Kind = iota + 1
	// KindRaw messages carry the undecoded payload bytes.
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindTyped:
		return "typed"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Message is one item of an envelope. Its identity is its index, not its type.
type Message struct {
	index        int
	kind         Kind
	value        any
	valueType    reflect.Type
	raw          []byte
	contractName string
	attributes   Attributes
	reason       error
}

// NewMessage creates a typed message for value. The index is assigned when the
// message is placed into an envelope.
func NewMessage(value any, attrs ...Attribute) Message {
	return Message{
		kind:       KindTyped,
		value:      value,
		valueType:  reflect.TypeOf(value),
		attributes: NewAttributes(attrs...),
	}
}

// DecodedMessage creates a typed message produced by decoding.
func DecodedMessage(index int, contractName string, value any, valueType reflect.Type, attrs Attributes) Message {
	return Message{
		index:        index,
		kind:         KindTyped,
		value:        value,
		valueType:    valueType,
		contractName: contractName,
		attributes:   attrs,
	}
}

// RawMessage creates a message that holds undecoded payload bytes. reason
// explains why the payload was not decoded.
func RawMessage(index int, contractName string, raw []byte, attrs Attributes, reason error) Message {
	return Message{
		index:        index,
		kind:         KindRaw,
		raw:          bytes.Clone(raw),
		contractName: contractName,
		attributes:   attrs,
		reason:       reason,
	}
}

// Index returns the position of the message within its envelope.
func (m Message) Index() int { return m.index }

// Kind reports whether the message is typed or raw.
func (m Message) Kind() Kind { return m.kind }

// IsRaw reports whether the payload was kept undecoded.
func (m Message) IsRaw() bool { return m.kind == KindRaw }

// Value returns the typed payload, or nil for raw messages.
func (m Message) Value() any { return m.value }

// Type returns the runtime type of the payload, or nil for raw messages.
func (m Message) Type() reflect.Type { return m.valueType }

// Raw returns a copy of the undecoded payload, or nil for typed messages.
func (m Message) Raw() []byte { return bytes.Clone(m.raw) }

// ContractName returns the contract name recorded on the wire. It is empty for
// messages that have not been through the codec.
func (m Message) ContractName() string { return m.contractName }

// Attributes returns the message-level attributes.
func (m Message) Attributes() Attributes { return m.attributes }

// Reason returns why a raw message was not decoded.
func (m Message) Reason() error { return m.reason }

func (m Message) withIndex(i int) Message {
	m.index = i
	return m
}
