package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/envelope"
)

// Unpacker turns a received body back into an envelope
type Unpacker interface {
	Unpack(ctx context.Context, buf []byte) (*envelope.Envelope, error)
}

// Handler processes a decoded envelope
type Handler func(ctx context.Context, env *envelope.Envelope) error

// Receiver decodes deliveries into envelopes
type Receiver struct {
	unpacker Unpacker
	logger   *slog.Logger
}

// ReceiverOption configures the receiver
type ReceiverOption func(*Receiver)

// WithReceiverLogger sets the logger
func WithReceiverLogger(logger *slog.Logger) ReceiverOption {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// NewReceiver creates a new receiver
func NewReceiver(unpacker Unpacker, options ...ReceiverOption) *Receiver {
	r := &Receiver{
		unpacker: unpacker,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Decode returns the envelope carried by a delivery.
func (r *Receiver) Decode(ctx context.Context, delivery amqp.Delivery) (*envelope.Envelope, error) {
	if delivery.ContentType != "" && delivery.ContentType != ContentType {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrInvalidDelivery, delivery.ContentType)
	}
	if len(delivery.Body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidDelivery)
	}
	return r.unpacker.Unpack(ctx, delivery.Body)
}

// Serve decodes and handles deliveries until ctx is done or the channel closes.
func (r *Receiver) Serve(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := r.handle(ctx, delivery, handler); err != nil {
				r.logger.Error("failed to acknowledge delivery",
					"message_id", delivery.MessageId,
					"error", err)
			}
		}
	}
}

func (r *Receiver) handle(ctx context.Context, delivery amqp.Delivery, handler Handler) error {
	env, err := r.Decode(ctx, delivery)
	if err != nil {
		if codec.IsRetryable(err) {
			r.logger.Warn("requeueing undecodable delivery",
				"message_id", delivery.MessageId,
				"error", err)
			return delivery.Nack(false, true)
		}
		r.logger.Error("rejecting undecodable delivery",
			"message_id", delivery.MessageId,
			"error", err)
		return delivery.Reject(false)
	}

	if raw := env.RawMessages(); len(raw) > 0 {
		r.logger.Debug("envelope has unresolved items",
			"envelope_id", env.ID(),
			"raw", len(raw))
	}

	if err := handler(ctx, env); err != nil {
		r.logger.Warn("handler failed, requeueing",
			"envelope_id", env.ID(),
			"error", err)
		return delivery.Nack(false, true)
	}
	return delivery.Ack(false)
}

// IsInvalidDelivery reports whether err came from a malformed delivery
func IsInvalidDelivery(err error) bool {
	return errors.Is(err, ErrInvalidDelivery)
}
