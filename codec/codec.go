package codec

import (
	"log/slog"

	"github.com/glimte/mmate-envelope/serialization"
)

// Codec encodes and decodes envelopes.
type Codec struct {
	payloads  serialization.PayloadSerializer
	envelopes serialization.EnvelopeSerializer
	logger    *slog.Logger
	strict    bool
}

// Option configures a Codec
type Option func(*Codec)

// WithLogger sets the logger used for degraded items
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithStrictPayloads makes a payload that cannot be deserialized fail the
// whole decode with ErrPayloadDeserializationFailed. By default such an item
// is kept as raw bytes, the same way an unresolved contract name is.
func WithStrictPayloads(strict bool) Option {
	return func(c *Codec) {
		c.strict = strict
	}
}

// New creates a codec from the payload and metadata serializers. Both are
// required.
func New(payloads serialization.PayloadSerializer, envelopes serialization.EnvelopeSerializer, opts ...Option) *Codec {
	if payloads == nil || envelopes == nil {
		panic("codec: payload and envelope serializers are required")
	}
	c := &Codec{
		payloads:  payloads,
		envelopes: envelopes,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}
