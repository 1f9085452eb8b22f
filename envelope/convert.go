package envelope

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/glimte/mmate-envelope/contracts"
)

// AttributesToContract converts attributes to their wire form, preserving order.
func AttributesToContract(a Attributes) ([]contracts.AttributeContract, error) {
	if a.Len() == 0 {
		return nil, nil
	}
	out := make([]contracts.AttributeContract, 0, a.Len())
	for _, item := range a.items {
		c, err := attributeToContract(item.Key, item.Value)
		if err != nil {
			return nil, &AttributeError{Key: item.Key, Value: item.Value, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

// AttributesFromContract converts wire attributes back, preserving order.
func AttributesFromContract(cs []contracts.AttributeContract) (Attributes, error) {
	items := make([]Attribute, 0, len(cs))
	for _, c := range cs {
		v, err := attributeFromContract(c)
		if err != nil {
			return Attributes{}, &AttributeError{Key: c.Key, Value: c.Type, Err: err}
		}
		items = append(items, Attribute{Key: c.Key, Value: v})
	}
	return NewAttributes(items...), nil
}

func attributeToContract(key string, value any) (contracts.AttributeContract, error) {
	c := contracts.AttributeContract{Key: key}
	switch v := value.(type) {
	case string:
		c.Type, c.StringValue = contracts.AttributeString, v
	case int:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case int8:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case int16:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case int32:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case int64:
		c.Type, c.NumberValue = contracts.AttributeInt, v
	case uint8:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case uint16:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case uint32:
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return c, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedAttribute, v)
		}
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return c, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedAttribute, v)
		}
		c.Type, c.NumberValue = contracts.AttributeInt, int64(v)
	case float32:
		c.Type, c.FloatValue = contracts.AttributeFloat, float64(v)
	case float64:
		c.Type, c.FloatValue = contracts.AttributeFloat, v
	case bool:
		c.Type = contracts.AttributeBool
		if v {
			c.NumberValue = 1
		}
	case time.Time:
		c.Type, c.NumberValue, c.Nanos = contracts.AttributeTime, v.Unix(), int32(v.Nanosecond())
	case []byte:
		c.Type, c.BytesValue = contracts.AttributeBytes, bytes.Clone(v)
	default:
		return c, ErrUnsupportedAttribute
	}
	return c, nil
}

func attributeFromContract(c contracts.AttributeContract) (any, error) {
	switch c.Type {
	case contracts.AttributeString:
		return c.StringValue, nil
	case contracts.AttributeInt:
		return c.NumberValue, nil
	case contracts.AttributeFloat:
		return c.FloatValue, nil
	case contracts.AttributeBool:
		return c.NumberValue != 0, nil
	case contracts.AttributeTime:
		if c.Nanos < 0 || c.Nanos >= 1e9 {
			return nil, fmt.Errorf("%w: nanos %d out of range", ErrUnsupportedAttribute, c.Nanos)
		}
		return time.Unix(c.NumberValue, int64(c.Nanos)).UTC(), nil
	case contracts.AttributeBytes:
		if c.BytesValue == nil {
			return []byte{}, nil
		}
		return bytes.Clone(c.BytesValue), nil
	default:
		return nil, fmt.Errorf("%w: wire type %s", ErrUnsupportedAttribute, c.Type)
	}
}
