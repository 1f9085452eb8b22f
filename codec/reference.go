package codec

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/glimte/mmate-envelope/envelope"
)

const (
	// ReferenceSignature opens every encoded reference.
	ReferenceSignature = "[cqrs-ref-r1]"

	// referenceSeparator is part of the wire format and must stay CRLF.
	referenceSeparator = "\r\n"
)

var (
	utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	referenceSignature = mustEncodeUTF16(ReferenceSignature)
)

func mustEncodeUTF16(s string) []byte {
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic("codec: failed to encode reference signature: " + err.Error())
	}
	return b
}

// EncodeReference encodes ref as UTF-16LE text led by the reference signature.
func EncodeReference(ref envelope.Reference) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(ReferenceSignature)
	sb.WriteString(referenceSeparator)
	sb.WriteString(ref.EnvelopeID)
	sb.WriteString(referenceSeparator)
	sb.WriteString(ref.Container)
	sb.WriteString(referenceSeparator)
	sb.WriteString(ref.Location)

	out, err := utf16LE.NewEncoder().Bytes([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference: %w", err)
	}
	return out, nil
}

// IsReference reports whether buf starts with the reference signature. Short
// buffers simply report false.
func IsReference(buf []byte) bool {
	return bytes.HasPrefix(buf, referenceSignature)
}

// DecodeReference sniffs buf for the reference signature. It returns false and
// no error when buf is not a reference, so callers can fall back to Decode.
// When the signature matches but the body is malformed it returns true and an
// error wrapping ErrCorruptReference.
func DecodeReference(buf []byte) (envelope.Reference, bool, error) {
	if !IsReference(buf) {
		return envelope.Reference{}, false, nil
	}
	if len(buf)%2 != 0 {
		return envelope.Reference{}, true, fmt.Errorf("%w: odd byte length %d", ErrCorruptReference, len(buf))
	}

	text, err := utf16LE.NewDecoder().Bytes(buf)
	if err != nil {
		return envelope.Reference{}, true, fmt.Errorf("%w: %w", ErrCorruptReference, err)
	}

	parts := strings.SplitN(string(text), referenceSeparator, 4)
	if len(parts) != 4 || parts[0] != ReferenceSignature {
		return envelope.Reference{}, true, fmt.Errorf("%w: expected 4 lines, got %d", ErrCorruptReference, len(parts))
	}

	return envelope.Reference{
		EnvelopeID: parts[1],
		Container:  parts[2],
		Location:   parts[3],
	}, true, nil
}

// EncodeReference is a convenience wrapper around the package function.
func (c *Codec) EncodeReference(ref envelope.Reference) ([]byte, error) {
	return EncodeReference(ref)
}

// DecodeReference is a convenience wrapper around the package function.
func (c *Codec) DecodeReference(buf []byte) (envelope.Reference, bool, error) {
	return DecodeReference(buf)
}
