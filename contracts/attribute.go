package contracts

import "fmt"

// AttributeType tags which value field of an AttributeContract is populated.
type AttributeType uint8

const (
	AttributeString AttributeType = iota + 1
	AttributeInt
	AttributeFloat
	AttributeBool
	AttributeTime
	AttributeBytes
)

func (t AttributeType) String() string {
	switch t {
	case AttributeString:
		return "string"
	case AttributeInt:
		return "int"
	case AttributeFloat:
		return "float"
	case AttributeBool:
		return "bool"
	case AttributeTime:
		return "time"
	case AttributeBytes:
		return "bytes"
	default:
		return fmt.Sprintf("AttributeType(%d)", uint8(t))
	}
}

// AttributeContract is the flat wire form of one key/value attribute.
// Bool values are stored in NumberValue as 0 or 1. Time values store Unix
// seconds in NumberValue and the nanosecond within that second in Nanos.
type AttributeContract struct {
	Key         string        `json:"key"`
	Type        AttributeType `json:"type"`
	StringValue string        `json:"stringValue,omitempty"`
	NumberValue int64         `json:"numberValue,omitempty"`
	FloatValue  float64       `json:"floatValue,omitempty"`
	Nanos       int32         `json:"nanos,omitempty"`
	BytesValue  []byte        `json:"bytesValue,omitempty"`
}
