package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrContractNameUnresolved is fatal on encode: the writer has no contract
	// name for an item's runtime type. On decode it is only used as the reason
	// attached to raw items.
	ErrContractNameUnresolved = errors.New("codec: contract name unresolved")

	// ErrPayloadTypeMismatch is fatal on encode: the item's runtime type is
	// not the exact type its contract name decodes to, so the item would not
	// read back as written.
	ErrPayloadTypeMismatch = errors.New("codec: payload type does not match registered type")

	// ErrUnsupportedFormatVersion means the buffer was written by an
	// incompatible writer. It is not retryable.
	ErrUnsupportedFormatVersion = errors.New("codec: unsupported format version")

	// ErrCorruptEnvelope covers truncated buffers, out-of-range offsets and
	// unreadable metadata.
	ErrCorruptEnvelope = errors.New("codec: corrupt envelope")

	// ErrPayloadDeserializationFailed is reported when a resolved payload
	// cannot be deserialized.
	ErrPayloadDeserializationFailed = errors.New("codec: payload deserialization failed")

	// ErrCorruptReference means a buffer carried the reference signature but
	// its body could not be parsed.
	ErrCorruptReference = errors.New("codec: corrupt reference")
)

// EncodeError reports a failed encode. Index is -1 for envelope-level failures.
type EncodeError struct {
	Op           string
	EnvelopeID   string
	Index        int
	ContractName string
	Err          error
}

func (e *EncodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("codec encode error: %s failed for envelope %s: %v", e.Op, e.EnvelopeID, e.Err)
	}
	if e.ContractName != "" {
		return fmt.Sprintf("codec encode error: %s failed for envelope %s item %d (%s): %v",
			e.Op, e.EnvelopeID, e.Index, e.ContractName, e.Err)
	}
	return fmt.Sprintf("codec encode error: %s failed for envelope %s item %d: %v", e.Op, e.EnvelopeID, e.Index, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError reports a failed decode with enough context to locate the
// corruption. Index is -1 for envelope-level failures. Offset and Length
// describe the byte range that was being read and Available the number of
// bytes that were actually present for it.
type DecodeError struct {
	Op        string
	Index     int
	Offset    int64
	Length    int64
	Available int64
	Err       error
}

func (e *DecodeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("codec decode error: %s failed (offset=%d length=%d available=%d): %v",
			e.Op, e.Offset, e.Length, e.Available, e.Err)
	}
	return fmt.Sprintf("codec decode error: %s failed for item %d (offset=%d length=%d available=%d): %v",
		e.Op, e.Index, e.Offset, e.Length, e.Available, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a higher layer may retry after re-fetching the
// source buffer. Only corruption qualifies; version and naming problems will
// not go away on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrUnsupportedFormatVersion):
		return false
	case errors.Is(err, ErrContractNameUnresolved):
		return false
	case errors.Is(err, ErrCorruptEnvelope), errors.Is(err, ErrCorruptReference):
		return true
	}
	return false
}
