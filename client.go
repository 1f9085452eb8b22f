// Copyright 2024 Mmate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mmate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glimte/mmate-envelope/claimcheck"
	"github.com/glimte/mmate-envelope/codec"
	"github.com/glimte/mmate-envelope/config"
	"github.com/glimte/mmate-envelope/envelope"
	"github.com/glimte/mmate-envelope/health"
	"github.com/glimte/mmate-envelope/serialization"
	"github.com/glimte/mmate-envelope/transports/rabbitmq"
)

// Client wires the codec, the claim-check store and the checker from a Config.
type Client struct {
	codec     *codec.Codec
	checker   *claimcheck.Checker
	store     claimcheck.Store
	redis     *redis.Client
	container string
	logger    *slog.Logger
}

// NewClient builds a client. The registry resolves payload types in both
// directions; a nil registry starts empty.
func NewClient(cfg config.Config, registry serialization.TypeRegistry, options ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc := &clientConfig{ctx: context.Background()}
	for _, opt := range options {
		opt(cc)
	}
	if cc.logger == nil {
		level, _ := cfg.Log.SlogLevel()
		cc.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if registry == nil {
		registry = serialization.NewTypeRegistry()
	}

	payloads, err := serialization.NewPayloadSerializer(cfg.Codec.PayloadFormat, serialization.WithTypeRegistry(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create payload serializer: %w", err)
	}
	envelopes, err := serialization.NewEnvelopeSerializer(cfg.Codec.MetadataFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope serializer: %w", err)
	}

	c := &Client{
		codec: codec.New(payloads, envelopes,
			codec.WithLogger(cc.logger),
			codec.WithStrictPayloads(cfg.Codec.StrictPayloads),
		),
		container: cfg.ClaimCheck.Container,
		logger:    cc.logger,
	}

	threshold := 0
	if cfg.ClaimCheck.Enabled {
		threshold = cfg.ClaimCheck.ThresholdBytes
		if err := c.openStore(cc, cfg); err != nil {
			return nil, err
		}
	}

	c.checker = claimcheck.New(c.codec, c.store,
		claimcheck.WithThreshold(threshold),
		claimcheck.WithContainer(cfg.ClaimCheck.Container),
		claimcheck.WithLogger(cc.logger),
	)

	c.logger.Info("Envelope client created",
		"metadata_format", cfg.Codec.MetadataFormat,
		"payload_format", cfg.Codec.PayloadFormat,
		"claim_check", cfg.ClaimCheck.Enabled,
		"store", cfg.ClaimCheck.Store)

	return c, nil
}

func (c *Client) openStore(cc *clientConfig, cfg config.Config) error {
	if cc.store != nil {
		c.store = cc.store
		return nil
	}

	switch cfg.ClaimCheck.Store {
	case config.StoreRedis:
		client, err := claimcheck.DialRedis(cc.ctx, claimcheck.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		})
		if err != nil {
			return fmt.Errorf("failed to connect claim-check store: %w", err)
		}
		ttl, _ := cfg.Redis.TTLDuration()
		c.redis = client
		c.store = claimcheck.NewRedisStore(client,
			claimcheck.WithKeyPrefix(cfg.Redis.KeyPrefix),
			claimcheck.WithTTL(ttl),
		)
	default:
		c.store = claimcheck.NewMemoryStore()
	}
	return nil
}

// Codec returns the envelope codec
func (c *Client) Codec() *codec.Codec {
	return c.codec
}

// Checker returns the claim-check wrapper around the codec
func (c *Client) Checker() *claimcheck.Checker {
	return c.checker
}

// Store returns the claim-check store, nil when claim-check is disabled
func (c *Client) Store() claimcheck.Store {
	return c.store
}

// Pack encodes env, offloading it when claim-check applies
func (c *Client) Pack(ctx context.Context, env *envelope.Envelope) ([]byte, error) {
	return c.checker.Pack(ctx, env)
}

// Unpack decodes an envelope or a reference to one
func (c *Client) Unpack(ctx context.Context, buf []byte) (*envelope.Envelope, error) {
	return c.checker.Unpack(ctx, buf)
}

// Publisher returns a RabbitMQ publisher that packs through this client
func (c *Client) Publisher(ch rabbitmq.Channel, options ...rabbitmq.PublisherOption) *rabbitmq.Publisher {
	options = append([]rabbitmq.PublisherOption{rabbitmq.WithPublisherLogger(c.logger)}, options...)
	return rabbitmq.NewPublisher(ch, c.checker, options...)
}

// Receiver returns a RabbitMQ receiver that unpacks through this client
func (c *Client) Receiver(options ...rabbitmq.ReceiverOption) *rabbitmq.Receiver {
	options = append([]rabbitmq.ReceiverOption{rabbitmq.WithReceiverLogger(c.logger)}, options...)
	return rabbitmq.NewReceiver(c.checker, options...)
}

// Health checks the codec and, when claim-check is enabled, the store.
func (c *Client) Health(ctx context.Context) health.OverallHealth {
	registry := health.NewRegistry(health.NewCodecChecker(c.codec))
	if c.store != nil {
		registry.Register(health.NewStoreChecker(c.store, c.container, time.Second))
	}
	if c.redis != nil {
		registry.Register(health.NewRedisChecker(c.redis))
	}
	return registry.Check(ctx)
}

// Close closes all resources
func (c *Client) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// clientConfig holds client configuration
type clientConfig struct {
	ctx    context.Context
	logger *slog.Logger
	store  claimcheck.Store
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithDefaultLogger uses the default logger
func WithDefaultLogger() ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = slog.Default()
	}
}

// WithStore replaces the store selected by the configuration
func WithStore(store claimcheck.Store) ClientOption {
	return func(cfg *clientConfig) {
		cfg.store = store
	}
}

// WithContext sets the context used while connecting to the store
func WithContext(ctx context.Context) ClientOption {
	return func(cfg *clientConfig) {
		cfg.ctx = ctx
	}
}
