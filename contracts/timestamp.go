package contracts

import "time"

// Timestamp is a UTC instant split into Unix seconds and nanoseconds, which
// covers the whole range of time.Time.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos,omitempty"`
}

// TimestampOf returns the wire form of t, or nil for the zero time.
func TimestampOf(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time returns the instant in UTC. A nil timestamp is the zero time.
func (ts *Timestamp) Time() time.Time {
	if ts == nil {
		return time.Time{}
	}
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}
