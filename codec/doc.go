// Package codec converts envelopes to and from a single self-describing binary
// block, and encodes the textual claim-check reference that can stand in for
// an envelope stored elsewhere.
//
// Wire layout of an encoded envelope:
//
//	[header, 28 bytes][metadata][payload 0][payload 1]...
//
// The header carries the format version and the metadata length. The metadata
// is an EnvelopeContract written by the injected EnvelopeSerializer; it records
// each item's contract name, length and offset relative to the payload region.
// Payload bytes are produced by the injected PayloadSerializer.
//
// Decoding is tolerant of unknown item types: when a contract name cannot be
// resolved, the item is kept as raw bytes instead of failing the whole
// envelope. Raw items are written back verbatim when the envelope is encoded
// again, so a reader can forward what it does not understand.
//
// A reference is encoded as UTF-16LE text:
//
//	[cqrs-ref-r1]\r\n<envelope id>\r\n<container>\r\n<location>
//
// The signature never matches the first bytes of an encoded envelope, so
// IsReference can be used to sniff any incoming buffer.
//
// A Codec holds no mutable state. It is safe for concurrent use as long as the
// injected serializers are.
package codec
