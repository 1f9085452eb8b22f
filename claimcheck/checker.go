package claimcheck

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/envelope"
)

const (
	// DefaultThreshold is the encoded size above which envelopes are offloaded.
	DefaultThreshold = 64 * 1024

	// DefaultContainer is the container used when none is configured.
	DefaultContainer = "envelopes"
)

// EnvelopeCodec is the part of codec.Codec the checker needs.
type EnvelopeCodec interface {
	Encode(env *envelope.Envelope) ([]byte, error)
	Decode(buf []byte) (*envelope.Envelope, error)
}

// Checker packs envelopes into either a full buffer or a reference.
type Checker struct {
	codec     EnvelopeCodec
	store     Store
	threshold int
	container string
	locate    func(*envelope.Envelope) string
	logger    *slog.Logger
}

// Option configures a Checker
type Option func(*Checker)

// WithThreshold sets the size in bytes above which envelopes are stored.
// A value <= 0 disables offloading.
func WithThreshold(n int) Option {
	return func(c *Checker) {
		c.threshold = n
	}
}

// WithContainer sets the storage container name
func WithContainer(name string) Option {
	return func(c *Checker) {
		c.container = name
	}
}

// WithLocator sets how the storage location is derived from an envelope.
// The default uses the envelope ID.
func WithLocator(fn func(*envelope.Envelope) string) Option {
	return func(c *Checker) {
		c.locate = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a checker. store may be nil when offloading is disabled.
func New(c EnvelopeCodec, store Store, opts ...Option) *Checker {
	checker := &Checker{
		codec:     c,
		store:     store,
		threshold: DefaultThreshold,
		container: DefaultContainer,
		locate:    func(env *envelope.Envelope) string { return env.ID() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(checker)
	}
	if checker.logger == nil {
		checker.logger = slog.Default()
	}
	return checker
}

// Pack encodes env. Buffers above the threshold are put into the store and
// the encoded reference is returned in their place.
func (c *Checker) Pack(ctx context.Context, env *envelope.Envelope) ([]byte, error) {
	buf, err := c.codec.Encode(env)
	if err != nil {
		return nil, err
	}
	if c.threshold <= 0 || len(buf) <= c.threshold || c.store == nil {
		return buf, nil
	}

	ref := envelope.Reference{
		EnvelopeID: env.ID(),
		Container:  c.container,
		Location:   c.locate(env),
	}
	data, err := codec.EncodeReference(ref)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, ref.Container, ref.Location, buf); err != nil {
		return nil, err
	}

	c.logger.Debug("stored envelope behind reference",
		"envelope_id", ref.EnvelopeID,
		"container", ref.Container,
		"location", ref.Location,
		"size", len(buf))
	return data, nil
}

// Unpack decodes buf, resolving it through the store first if it is a reference.
func (c *Checker) Unpack(ctx context.Context, buf []byte) (*envelope.Envelope, error) {
	ref, ok, err := codec.DecodeReference(buf)
	if err != nil {
		return nil, err
	}
	if !ok {
		return c.codec.Decode(buf)
	}
	return c.Resolve(ctx, ref)
}

// Resolve fetches and decodes the envelope a reference points to.
func (c *Checker) Resolve(ctx context.Context, ref envelope.Reference) (*envelope.Envelope, error) {
	if c.store == nil {
		return nil, fmt.Errorf("claimcheck: no store configured to resolve %s", ref)
	}
	data, err := c.store.Get(ctx, ref.Container, ref.Location)
	if err != nil {
		return nil, err
	}
	env, err := c.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if env.ID() != ref.EnvelopeID {
		return nil, fmt.Errorf("%w: reference %s, stored %s", ErrReferenceMismatch, ref.EnvelopeID, env.ID())
	}
	return env, nil
}

// Release deletes the stored body behind a reference buffer. Buffers that are
// not references are ignored.
func (c *Checker) Release(ctx context.Context, buf []byte) error {
	ref, ok, err := codec.DecodeReference(buf)
	if err != nil || !ok {
		return err
	}
	if c.store == nil {
		return nil
	}
	return c.store.Delete(ctx, ref.Container, ref.Location)
}
