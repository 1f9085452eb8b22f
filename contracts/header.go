package contracts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// HeaderSize is the fixed number of bytes occupied by the Header.
	HeaderSize = 28

	// FormatVersion is the only format version tag this package writes or accepts.
	FormatVersion int32 = 2010020701
)

// ErrShortHeader is returned when a buffer is too small to hold a Header.
var ErrShortHeader = errors.New("contracts: buffer shorter than envelope header")

// Header is the fixed-size prefix of every encoded envelope.
//
// Layout (little endian):
//
//	offset 0  int32  format version
//	offset 4  int64  metadata length
//	offset 12 int64  reserved, written as zero
//	offset 20 8 bytes padding, written as zero
type Header struct {
	FormatVersion  int32
	MetadataLength int64
	Reserved       int64
}

// NewHeader returns a header for the current format version.
func NewHeader(metadataLength int64) Header {
	return Header{
		FormatVersion:  FormatVersion,
		MetadataLength: metadataLength,
	}
}

// AppendTo appends the encoded header to dst and returns the extended slice.
func (h Header) AppendTo(dst []byte) []byte {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.FormatVersion))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(h.MetadataLength))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(h.Reserved))
	return append(dst, buf[:]...)
}

// Bytes returns the encoded header.
func (h Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// IsCurrent reports whether the header carries the recognized format version.
func (h Header) IsCurrent() bool {
	return h.FormatVersion == FormatVersion
}

// ReadHeader parses the header at the start of buf. It does not validate the
// format version; callers decide how to treat unknown versions.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d bytes, need %d", ErrShortHeader, len(buf), HeaderSize)
	}
	return Header{
		FormatVersion:  int32(binary.LittleEndian.Uint32(buf[0:4])),
		MetadataLength: int64(binary.LittleEndian.Uint64(buf[4:12])),
		Reserved:       int64(binary.LittleEndian.Uint64(buf[12:20])),
	}, nil
}
