package envelope

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAttribute is returned when an attribute value has a kind
	// that cannot be represented on the wire.
	ErrUnsupportedAttribute = errors.New("envelope: unsupported attribute value")

	// ErrInvalidReference is returned when a reference cannot be encoded
	// without ambiguity.
	ErrInvalidReference = errors.New("envelope: invalid reference")
)

// AttributeError reports a single attribute that failed conversion.
type AttributeError struct {
	Key   string
	Value any
	Err   error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute %q (%T): %v", e.Key, e.Value, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}
