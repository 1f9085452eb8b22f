// Package envelope provides the in-memory model exchanged through the codec:
// an immutable Envelope holding an ordered batch of Messages, ordered
// key/value Attributes at envelope and message level, and the Reference used
// when an envelope body is stored elsewhere.
//
// Envelopes are built with a Builder:
//
//	env := envelope.NewBuilder(
//	    envelope.WithAttribute("trace-id", "t1"),
//	).AddMessage(Money{Amount: 10, Currency: "USD"}).Build()
//
// After decoding, each Message is either typed (its payload was resolved and
// deserialized) or raw (its contract name was unknown to the reader, or its
// payload could not be deserialized). Raw messages keep the exact payload bytes
// so they can be passed on without loss.
package envelope
