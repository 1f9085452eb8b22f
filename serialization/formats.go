package serialization

import (
	"errors"
	"fmt"
)

// Format names accepted by the factory functions.
const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// ErrUnknownFormat is returned for an unrecognized format name.
var ErrUnknownFormat = errors.New("serialization: unknown format")

// NewPayloadSerializer constructs a payload serializer by format name.
func NewPayloadSerializer(format string, opts ...PayloadOption) (PayloadSerializer, error) {
	switch format {
	case FormatJSON:
		return NewJSONPayloadSerializer(opts...), nil
	case FormatCBOR:
		return NewCBORPayloadSerializer(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// NewEnvelopeSerializer constructs a metadata serializer by format name.
func NewEnvelopeSerializer(format string) (EnvelopeSerializer, error) {
	switch format {
	case FormatJSON:
		return NewJSONEnvelopeSerializer(), nil
	case FormatCBOR:
		return NewCBOREnvelopeSerializer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
