package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/groupify/backend/pkg/auth"
)

const blacklistKeyPrefix = "blacklist:"

// RedisConfig holds connection settings for the redis-backed blacklist.
type RedisConfig struct {
	// URL is a redis connection URL, e.g. redis://localhost:6379/0
	URL      string
	Password string
	DB       int

	// TTL, when positive, expires blacklist entries after the provider's
	// token expiry window. Zero keeps entries forever, matching the
	// append-only contract; expiry is an explicit operator opt-in.
	TTL time.Duration
}

// RedisBlacklist stores revoked tokens as keyed entries in redis. Insert uses
// SETNX so concurrent logouts for the same token settle on a single entry.
type RedisBlacklist struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBlacklist connects to redis and verifies the connection.
func NewRedisBlacklist(cfg RedisConfig) (*RedisBlacklist, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBlacklist{client: client, ttl: cfg.TTL}, nil
}

// NewRedisBlacklistFromClient wraps an existing client, mainly for tests.
func NewRedisBlacklistFromClient(client *redis.Client, ttl time.Duration) *RedisBlacklist {
	return &RedisBlacklist{client: client, ttl: ttl}
}

// Insert records a revocation. SETNX leaves an existing entry untouched, so
// a duplicate insert is a no-op success.
func (s *RedisBlacklist) Insert(ctx context.Context, entry auth.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal blacklist entry: %w", err)
	}
	if err := s.client.SetNX(ctx, blacklistKeyPrefix+entry.Token, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	return nil
}

// Lookup returns the entry for token, or nil when the key is absent.
func (s *RedisBlacklist) Lookup(ctx context.Context, token string) (*auth.Entry, error) {
	data, err := s.client.Get(ctx, blacklistKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry auth.Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("unmarshal blacklist entry: %w", err)
	}
	return &entry, nil
}

// Client exposes the underlying redis client for health checks.
func (s *RedisBlacklist) Client() *redis.Client {
	return s.client
}

// Ping verifies connectivity, for health checks.
func (s *RedisBlacklist) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisBlacklist) Close() error {
	return s.client.Close()
}
