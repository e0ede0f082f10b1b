// Package session implements the storefront session store used for referral coupons.
package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an idle storefront session keeps its values
const DefaultTTL = 48 * time.Hour

// RedisConfig holds connection parameters for the Redis session store.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
	TTL        time.Duration
}

// RedisSessionStore keeps session values in one Redis hash per session.
//
// Key schema:
//
//	session:{id} - hash of session keys to values
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore connects to Redis and pings it to verify connectivity.
func NewRedisSessionStore(ctx context.Context, cfg RedisConfig) (*RedisSessionStore, error) {
	opts := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return NewRedisSessionStoreFromClient(rdb, cfg.TTL), nil
}

// NewRedisSessionStoreFromClient wraps an existing client
func NewRedisSessionStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

// Get returns the value stored under key for the session
func (s *RedisSessionStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, err := s.rdb.HGet(ctx, sessionKey(sessionID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis: get session %s: %w", sessionID, err)
	}
	return value, true, nil
}

// Set stores value under key and refreshes the session TTL
func (s *RedisSessionStore) Set(ctx context.Context, sessionID, key, value string) error {
	k := sessionKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set session %s: %w", sessionID, err)
	}
	return nil
}

// Delete removes key from the session
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.rdb.HDel(ctx, sessionKey(sessionID), key).Err(); err != nil {
		return fmt.Errorf("redis: delete session %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
