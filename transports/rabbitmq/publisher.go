package rabbitmq

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/envelope"
)

const (
	// ContentType marks publishings that carry an encoded envelope or reference.
	ContentType = "application/x-mmate-envelope"

	HeaderEnvelopeKind = "x-envelope-kind"
	HeaderMessageCount = "x-message-count"
	// HeaderDelay is read by the delayed-message exchange plugin, in milliseconds.
	HeaderDelay = "x-delay"

	KindEnvelope  = "envelope"
	KindReference = "reference"
)

// Channel is the part of *amqp.Channel used for publishing
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Packer turns an envelope into the bytes to publish
type Packer interface {
	Pack(ctx context.Context, env *envelope.Envelope) ([]byte, error)
}

// Publisher publishes envelopes to RabbitMQ
type Publisher struct {
	channel        Channel
	packer         Packer
	publishTimeout time.Duration
	maxRetries     int
	backoff        time.Duration
	persistent     bool
	logger         *slog.Logger
}

// PublisherOption configures the publisher
type PublisherOption func(*Publisher)

// WithPublishTimeout sets the timeout applied when ctx has no deadline
func WithPublishTimeout(timeout time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.publishTimeout = timeout
	}
}

// WithPublishRetries sets the maximum number of publish retries
func WithPublishRetries(retries int, backoff time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.maxRetries = retries
		p.backoff = backoff
	}
}

// WithPersistent marks publishings as persistent
func WithPersistent(persistent bool) PublisherOption {
	return func(p *Publisher) {
		p.persistent = persistent
	}
}

// WithPublisherLogger sets the logger
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a new publisher
func NewPublisher(channel Channel, packer Packer, options ...PublisherOption) *Publisher {
	p := &Publisher{
		channel:        channel,
		packer:         packer,
		publishTimeout: 10 * time.Second,
		maxRetries:     3,
		backoff:        time.Second,
		persistent:     true,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Publishing builds the amqp.Publishing for env without sending it.
func (p *Publisher) Publishing(ctx context.Context, env *envelope.Envelope) (amqp.Publishing, error) {
	body, err := p.packer.Pack(ctx, env)
	if err != nil {
		return amqp.Publishing{}, err
	}

	kind := KindEnvelope
	if codec.IsReference(body) {
		kind = KindReference
	}

	msg := amqp.Publishing{
		ContentType: ContentType,
		MessageId:   env.ID(),
		Timestamp:   env.CreatedOn(),
		Headers: amqp.Table{
			HeaderEnvelopeKind: kind,
			HeaderMessageCount: int32(env.Len()),
		},
		Body: body,
	}
	if p.persistent {
		msg.DeliveryMode = amqp.Persistent
	}
	if env.HasDeliveryDelay() {
		if delay := time.Until(env.DeliverOn()); delay > 0 {
			msg.Headers[HeaderDelay] = int64(delay.Milliseconds())
		}
	}
	return msg, nil
}

// Publish packs env and publishes it, retrying with linear backoff.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, env *envelope.Envelope) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && p.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}

	msg, err := p.Publishing(ctx, env)
	if err != nil {
		return err
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * p.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		attempts++
		lastErr = p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, msg)
		if lastErr == nil {
			p.logger.Debug("published envelope",
				"envelope_id", env.ID(),
				"exchange", exchange,
				"routing_key", routingKey,
				"kind", msg.Headers[HeaderEnvelopeKind],
				"size", len(msg.Body))
			return nil
		}

		p.logger.Warn("publish attempt failed",
			"envelope_id", env.ID(),
			"attempt", attempts,
			"error", lastErr)
	}

	return &PublishError{
		Exchange:   exchange,
		RoutingKey: routingKey,
		EnvelopeID: env.ID(),
		Attempts:   attempts,
		Err:        lastErr,
	}
}
