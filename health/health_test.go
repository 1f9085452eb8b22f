package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/mmate-envelope/claimcheck"
	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/envelope"
	"github.com/glimte/mmate-envelope/serialization"
)

func fixed(name string, status Status) Checker {
	return NewCheckerFunc(name, func(context.Context) CheckResult {
		return CheckResult{Name: name, Status: status}
	})
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for i, s := range tt.statuses {
				r.Register(fixed(string(rune('a'+i)), s))
			}
			h := r.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Len(t, h.Checks, len(tt.statuses))
		})
	}
}

func TestRegistry_Timeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	r := NewRegistry(
		fixed("fast", StatusHealthy),
		NewCheckerFunc("stuck", func(context.Context) CheckResult {
			<-block
			return CheckResult{Status: StatusHealthy}
		}),
	)
	assert.Equal(t, []string{"fast", "stuck"}, r.Names())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h := r.Check(ctx)
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Equal(t, "Check timed out", h.Checks["stuck"].Message)
}

func TestCodecChecker(t *testing.T) {
	for _, format := range []string{serialization.FormatCBOR, serialization.FormatJSON} {
		t.Run(format, func(t *testing.T) {
			meta, err := serialization.NewEnvelopeSerializer(format)
			require.NoError(t, err)
			c := codec.New(serialization.NewJSONPayloadSerializer(), meta)

			res := NewCodecChecker(c).Check(context.Background())
			assert.Equal(t, StatusHealthy, res.Status, res.Error)
			assert.Greater(t, res.Details["sample_size"], 28)
		})
	}
}

type brokenCodec struct{}

func (brokenCodec) Encode(*envelope.Envelope) ([]byte, error) { return nil, errors.New("no encoder") }
func (brokenCodec) Decode([]byte) (*envelope.Envelope, error) { return nil, errors.New("no decoder") }

func TestCodecChecker_Failure(t *testing.T) {
	res := NewCodecChecker(brokenCodec{}).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "no encoder", res.Error)
}

type failingStore struct {
	*claimcheck.MemoryStore
}

func (failingStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestStoreChecker(t *testing.T) {
	store := claimcheck.NewMemoryStore()
	res := NewStoreChecker(store, "envelopes", 0).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, 0, store.Len(), "sample blob is removed")

	res = NewStoreChecker(failingStore{claimcheck.NewMemoryStore()}, "envelopes", 0).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "Failed to read sample blob", res.Message)

	res = NewStoreChecker(store, "envelopes", time.Nanosecond).Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
}
