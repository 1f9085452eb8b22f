package rabbitmq

import (
	"errors"
	"fmt"
)

var (
	ErrPublishFailed   = errors.New("rabbitmq: publish failed")
	ErrInvalidDelivery = errors.New("rabbitmq: invalid delivery")
)

// PublishError describes a publish that failed after all attempts
type PublishError struct {
	Exchange   string
	RoutingKey string
	EnvelopeID string
	Attempts   int
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("rabbitmq publish error: envelope %s to %s/%s failed after %d attempts: %v",
		e.EnvelopeID, e.Exchange, e.RoutingKey, e.Attempts, e.Err)
}

func (e *PublishError) Unwrap() []error {
	return []error{ErrPublishFailed, e.Err}
}
