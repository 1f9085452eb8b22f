package envelope

import (
	"time"

	"github.com/google/uuid"
)

// Option configures a Builder.
type Option func(*Builder)

// WithID sets a custom envelope ID instead of a generated one.
func WithID(id string) Option {
	return func(b *Builder) {
		b.id = id
	}
}

// WithCreatedOn sets the creation timestamp.
func WithCreatedOn(t time.Time) Option {
	return func(b *Builder) {
		b.createdOn = t
	}
}

// WithDeliverOn sets the earliest delivery time.
func WithDeliverOn(t time.Time) Option {
	return func(b *Builder) {
		b.deliverOn = t
		b.delay = 0
	}
}

// WithDelay sets the earliest delivery time relative to the creation time.
func WithDelay(d time.Duration) Option {
	return func(b *Builder) {
		b.delay = d
		b.deliverOn = time.Time{}
	}
}

// WithAttribute sets an envelope-level attribute.
func WithAttribute(key string, value any) Option {
	return func(b *Builder) {
		b.attributes = b.attributes.With(key, value)
	}
}

// WithAttributes sets several envelope-level attributes in order.
func WithAttributes(attrs ...Attribute) Option {
	return func(b *Builder) {
		for _, a := range attrs {
			b.attributes = b.attributes.With(a.Key, a.Value)
		}
	}
}

// WithClock overrides the time source used for the default creation time.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// Builder accumulates messages and metadata for a new envelope.
type Builder struct {
	id         string
	messages   []Message
	attributes Attributes
	createdOn  time.Time
	deliverOn  time.Time
	delay      time.Duration
	now        func() time.Time
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddMessage appends a typed message with optional message-level attributes.
func (b *Builder) AddMessage(value any, attrs ...Attribute) *Builder {
	b.messages = append(b.messages, NewMessage(value, attrs...))
	return b
}

// AddMessages appends one typed message per value.
func (b *Builder) AddMessages(values ...any) *Builder {
	for _, v := range values {
		b.AddMessage(v)
	}
	return b
}

// Add appends an already constructed message, typed or raw.
func (b *Builder) Add(m Message) *Builder {
	b.messages = append(b.messages, m)
	return b
}

// Build returns the envelope. A UUID is generated when no ID was set and the
// creation time defaults to now.
func (b *Builder) Build() *Envelope {
	id := b.id
	if id == "" {
		id = uuid.New().String()
	}
	createdOn := b.createdOn
	if createdOn.IsZero() {
		createdOn = b.now()
	}
	deliverOn := b.deliverOn
	if b.delay > 0 {
		deliverOn = createdOn.Add(b.delay)
	}
	return New(id, b.messages, b.attributes, createdOn, deliverOn)
}
