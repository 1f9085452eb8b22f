package health

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/glimte/mmate-envelope/claimcheck"
	"github.com/glimte/mmate-envelope/envelope"
)

// EnvelopeCodec is the part of codec.Codec used by CodecChecker
type EnvelopeCodec interface {
	Encode(env *envelope.Envelope) ([]byte, error)
	Decode(buf []byte) (*envelope.Envelope, error)
}

// CodecChecker encodes and decodes an empty sample envelope. It fails when the
// configured serializers cannot round-trip metadata.
type CodecChecker struct {
	codec EnvelopeCodec
}

// NewCodecChecker creates a codec checker
func NewCodecChecker(codec EnvelopeCodec) *CodecChecker {
	return &CodecChecker{codec: codec}
}

func (c *CodecChecker) Name() string {
	return "codec"
}

func (c *CodecChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Timestamp: start,
		Details:   make(map[string]any),
	}

	sample := envelope.NewBuilder(envelope.WithAttribute("health", true)).Build()
	buf, err := c.codec.Encode(sample)
	if err == nil {
		var out *envelope.Envelope
		out, err = c.codec.Decode(buf)
		if err == nil && out.ID() != sample.ID() {
			err = fmt.Errorf("decoded id %q, want %q", out.ID(), sample.ID())
		}
	}

	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = "Sample envelope did not round-trip"
		result.Error = err.Error()
		return result
	}

	result.Status = StatusHealthy
	result.Message = "Codec is healthy"
	result.Details["sample_size"] = len(buf)
	return result
}

// StoreChecker writes, reads back and deletes a sample blob.
type StoreChecker struct {
	store     claimcheck.Store
	container string
	slow      time.Duration
}

// NewStoreChecker creates a store checker. Round trips slower than slow are
// reported as degraded; zero disables that.
func NewStoreChecker(store claimcheck.Store, container string, slow time.Duration) *StoreChecker {
	return &StoreChecker{store: store, container: container, slow: slow}
}

func (c *StoreChecker) Name() string {
	return "claim_check_store"
}

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Timestamp: start,
		Details:   make(map[string]any),
	}

	location := "health-" + uuid.NewString()
	sample := []byte(location)

	fail := func(msg string, err error) CheckResult {
		result.Status = StatusUnhealthy
		result.Message = msg
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result
	}

	if err := c.store.Put(ctx, c.container, location, sample); err != nil {
		return fail("Failed to store sample blob", err)
	}
	got, err := c.store.Get(ctx, c.container, location)
	if err != nil {
		return fail("Failed to read sample blob", err)
	}
	if err := c.store.Delete(ctx, c.container, location); err != nil {
		return fail("Failed to delete sample blob", err)
	}
	if !bytes.Equal(got, sample) {
		return fail("Sample blob corrupted", fmt.Errorf("read %d bytes, wrote %d", len(got), len(sample)))
	}

	result.Duration = time.Since(start)
	result.Details["response_time_ms"] = result.Duration.Milliseconds()
	if c.slow > 0 && result.Duration > c.slow {
		result.Status = StatusDegraded
		result.Message = "Store is slow"
		return result
	}
	result.Status = StatusHealthy
	result.Message = "Store is healthy"
	return result
}

// RedisChecker pings Redis and reports pool statistics
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a Redis checker
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string {
	return "redis"
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      c.Name(),
		Timestamp: start,
		Details:   make(map[string]any),
	}

	err := c.client.Ping(ctx).Err()
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = "Ping failed"
		result.Error = err.Error()
		return result
	}

	stats := c.client.PoolStats()
	result.Status = StatusHealthy
	result.Message = "Connection is healthy"
	result.Details["total_conns"] = stats.TotalConns
	result.Details["idle_conns"] = stats.IdleConns
	result.Details["timeouts"] = stats.Timeouts
	result.Details["response_time_ms"] = result.Duration.Milliseconds()
	return result
}

// CheckerFunc adapts a function to Checker
type CheckerFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func NewCheckerFunc(name string, fn func(ctx context.Context) CheckResult) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (c *CheckerFunc) Check(ctx context.Context) CheckResult {
	return c.fn(ctx)
}

func (c *CheckerFunc) Name() string {
	return c.name
}
