// Package contracts defines the wire-level shapes of an encoded envelope.
//
// An encoded envelope is laid out as:
//
//	[Header][metadata: EnvelopeContract][payload item 0][payload item 1]...
//
// The Header has a fixed size and records the format version and the length of
// the metadata section. The metadata section is an EnvelopeContract serialized
// by a pluggable envelope serializer. Each MessageContract records where its
// payload lives, relative to the start of the payload region.
//
// These types are not meant to be used directly by applications; the codec
// package converts between them and the runtime envelope model.
package contracts
