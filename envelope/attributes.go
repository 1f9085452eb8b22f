package envelope

import (
	"bytes"
	"reflect"
	"time"
)

// Attribute is a single key/value pair.
type Attribute struct {
	Key   string
	Value any
}

// Attr is shorthand for building an Attribute.
func Attr(key string, value any) Attribute {
	return Attribute{Key: key, Value: value}
}

// Attributes is an immutable, insertion-ordered set of key/value pairs.
// Supported value kinds are string, signed and unsigned integers, floats, bool,
// time.Time and []byte. Integers are widened to int64 and floats to float64
// when the attributes are encoded.
type Attributes struct {
	items []Attribute
}

// NewAttributes builds attributes from pairs in order. A repeated key replaces
// the earlier value but keeps the earlier position.
func NewAttributes(pairs ...Attribute) Attributes {
	var a Attributes
	for _, p := range pairs {
		a = a.With(p.Key, p.Value)
	}
	return a
}

// With returns a copy of a with key set to value.
func (a Attributes) With(key string, value any) Attributes {
	value = cloneValue(value)
	items := make([]Attribute, len(a.items), len(a.items)+1)
	copy(items, a.items)
	for i := range items {
		if items[i].Key == key {
			items[i].Value = value
			return Attributes{items: items}
		}
	}
	return Attributes{items: append(items, Attribute{Key: key, Value: value})}
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (any, bool) {
	for _, item := range a.items {
		if item.Key == key {
			return cloneValue(item.Value), true
		}
	}
	return nil, false
}

// String returns the value under key if it is a string.
func (a Attributes) String(key string) (string, bool) {
	v, ok := a.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	return len(a.items)
}

// Keys returns the keys in insertion order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a.items))
	for i, item := range a.items {
		keys[i] = item.Key
	}
	return keys
}

// All returns a copy of the pairs in insertion order.
func (a Attributes) All() []Attribute {
	out := make([]Attribute, len(a.items))
	for i, item := range a.items {
		out[i] = Attribute{Key: item.Key, Value: cloneValue(item.Value)}
	}
	return out
}

// Equal reports whether both sets hold the same keys in the same order with
// equal values.
func (a Attributes) Equal(other Attributes) bool {
	if len(a.items) != len(other.items) {
		return false
	}
	for i := range a.items {
		if a.items[i].Key != other.items[i].Key {
			return false
		}
		if !valueEqual(a.items[i].Value, other.items[i].Value) {
			return false
		}
	}
	return true
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return bytes.Clone(t)
	case time.Time:
		return t.UTC()
	default:
		return v
	}
}

func valueEqual(x, y any) bool {
	switch xv := x.(type) {
	case []byte:
		yv, ok := y.([]byte)
		return ok && bytes.Equal(xv, yv)
	case time.Time:
		yv, ok := y.(time.Time)
		return ok && xv.Equal(yv)
	default:
		return reflect.DeepEqual(x, y)
	}
}
