package envelope

import (
	"time"
)

// Envelope is an immutable batch of messages with envelope-level metadata.
type Envelope struct {
	id         string
	messages   []Message
	attributes Attributes
	createdOn  time.Time
	deliverOn  time.Time
}

// New assembles an envelope. Messages are re-indexed 0..N-1 in the given order
// and timestamps are normalized to UTC. A zero deliverOn means no delivery delay.
func New(id string, messages []Message, attrs Attributes, createdOn, deliverOn time.Time) *Envelope {
	items := make([]Message, len(messages))
	for i, m := range messages {
		items[i] = m.withIndex(i)
	}
	env := &Envelope{
		id:         id,
		messages:   items,
		attributes: attrs,
		createdOn:  createdOn.UTC(),
	}
	if !deliverOn.IsZero() {
		env.deliverOn = deliverOn.UTC()
	}
	return env
}

// ID returns the caller-assigned envelope identifier.
func (e *Envelope) ID() string { return e.id }

// Messages returns the messages in order.
func (e *Envelope) Messages() []Message {
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

// Message returns the message at index i.
func (e *Envelope) Message(i int) (Message, bool) {
	if i < 0 || i >= len(e.messages) {
		return Message{}, false
	}
	return e.messages[i], true
}

// Len returns the number of messages.
func (e *Envelope) Len() int { return len(e.messages) }

// Attributes returns the envelope-level attributes.
func (e *Envelope) Attributes() Attributes { return e.attributes }

// CreatedOn returns the creation instant in UTC.
func (e *Envelope) CreatedOn() time.Time { return e.createdOn }

// DeliverOn returns the earliest delivery instant in UTC, or the zero time.
func (e *Envelope) DeliverOn() time.Time { return e.deliverOn }

// HasDeliveryDelay reports whether a delivery-not-before instant is set.
func (e *Envelope) HasDeliveryDelay() bool { return !e.deliverOn.IsZero() }

// RawMessages returns the messages that could not be decoded.
func (e *Envelope) RawMessages() []Message {
	var out []Message
	for _, m := range e.messages {
		if m.IsRaw() {
			out = append(out, m)
		}
	}
	return out
}
