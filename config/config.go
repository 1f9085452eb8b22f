// Package config loads client settings from TOML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/glimte/mmate-envelope/serialization"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the root of the TOML file.
type Config struct {
	Codec      CodecConfig      `toml:"codec"`
	ClaimCheck ClaimCheckConfig `toml:"claim_check"`
	Redis      RedisConfig      `toml:"redis"`
	Log        LogConfig        `toml:"log"`
}

type CodecConfig struct {
	MetadataFormat string `toml:"metadata_format"`
	PayloadFormat  string `toml:"payload_format"`
	StrictPayloads bool   `toml:"strict_payloads"`
}

type ClaimCheckConfig struct {
	Enabled        bool   `toml:"enabled"`
	ThresholdBytes int    `toml:"threshold_bytes"`
	Container      string `toml:"container"`
	Store          string `toml:"store"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	TLS       bool   `toml:"tls"`
	KeyPrefix string `toml:"key_prefix"`
	// TTL is a Go duration string such as "24h". Empty keeps blobs forever.
	TTL string `toml:"ttl"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Codec: CodecConfig{
			MetadataFormat: serialization.FormatCBOR,
			PayloadFormat:  serialization.FormatJSON,
		},
		ClaimCheck: ClaimCheckConfig{
			ThresholdBytes: 64 * 1024,
			Container:      "envelopes",
			Store:          StoreMemory,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "mmate:claimcheck",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if !validFormat(c.Codec.MetadataFormat) {
		errs = append(errs, fmt.Errorf("%w: codec.metadata_format %q", ErrInvalidConfig, c.Codec.MetadataFormat))
	}
	if !validFormat(c.Codec.PayloadFormat) {
		errs = append(errs, fmt.Errorf("%w: codec.payload_format %q", ErrInvalidConfig, c.Codec.PayloadFormat))
	}

	if c.ClaimCheck.Enabled {
		if c.ClaimCheck.ThresholdBytes <= 0 {
			errs = append(errs, fmt.Errorf("%w: claim_check.threshold_bytes must be positive", ErrInvalidConfig))
		}
		if c.ClaimCheck.Container == "" || strings.Contains(c.ClaimCheck.Container, "\r\n") {
			errs = append(errs, fmt.Errorf("%w: claim_check.container %q", ErrInvalidConfig, c.ClaimCheck.Container))
		}
		switch c.ClaimCheck.Store {
		case StoreMemory:
		case StoreRedis:
			if c.Redis.Addr == "" {
				errs = append(errs, fmt.Errorf("%w: redis.addr is required for the redis store", ErrInvalidConfig))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: claim_check.store %q", ErrInvalidConfig, c.ClaimCheck.Store))
		}
	}

	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("%w: redis.db must not be negative", ErrInvalidConfig))
	}
	if _, err := c.Redis.TTLDuration(); err != nil {
		errs = append(errs, fmt.Errorf("%w: redis.ttl: %w", ErrInvalidConfig, err))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

// TTLDuration parses TTL. Empty means no expiry.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// SlogLevel maps Level to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

func validFormat(format string) bool {
	return format == serialization.FormatJSON || format == serialization.FormatCBOR
}
