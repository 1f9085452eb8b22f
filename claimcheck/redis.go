package claimcheck

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for DialRedis
type RedisConfig struct {
	Addr          string
	Username      string
	Password      string
	DB            int
	TLS           bool
	TLSServerName string
}

// DialRedis creates a client and verifies the connection with a PING.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.TLSServerName,
		}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore stores blobs as plain Redis string values under
// "<prefix>:<container>:<location>". Percent signs and colons inside
// container and location are percent-encoded so distinct pairs never
// share a key.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key prefix (default "mmate:claimcheck")
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.TrimSuffix(prefix, ":")
	}
}

// WithTTL expires stored blobs after ttl. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore creates a store on top of an existing client
func NewRedisStore(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "mmate:claimcheck",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var keySegmentEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key returns the Redis key used for a blob
func (s *RedisStore) Key(container, location string) string {
	return s.prefix + ":" + keySegmentEscaper.Replace(container) + ":" + keySegmentEscaper.Replace(location)
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, container, location string, data []byte) error {
	if err := s.client.Set(ctx, s.Key(container, location), data, s.ttl).Err(); err != nil {
		return &StoreError{Op: "put", Container: container, Location: location, Err: err}
	}
	return nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, container, location string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(container, location)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrBlobNotFound
		}
		return nil, &StoreError{Op: "get", Container: container, Location: location, Err: err}
	}
	return data, nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, container, location string) error {
	if err := s.client.Del(ctx, s.Key(container, location)).Err(); err != nil {
		return &StoreError{Op: "delete", Container: container, Location: location, Err: err}
	}
	return nil
}
