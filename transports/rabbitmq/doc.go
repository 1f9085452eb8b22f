// Package rabbitmq carries envelopes over RabbitMQ.
//
// Publisher packs an envelope through a claimcheck.Checker and publishes the
// resulting buffer, which is either the full envelope or a reference to it.
// Receiver reverses this for an amqp.Delivery and, when serving a delivery
// channel, acknowledges according to the outcome:
//   - decoded and handled: Ack
//   - handler failed or the buffer was corrupt: Nack with requeue
//   - anything else that cannot be decoded: Reject without requeue
package rabbitmq
