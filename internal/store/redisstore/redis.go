// Package redisstore provides a Redis-backed definition cache shared between
// runs and processes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/griffnb/tsschema/internal/store"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is used when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "tsschema:def:"

// Config contains configuration options for the Redis store
type Config struct {
	// Client is the Redis client instance
	Client redis.UniversalClient

	// KeyPrefix is the prefix for all Redis keys
	// Default: "tsschema:def:"
	KeyPrefix string

	// TTL expires entries. Zero keeps them until evicted.
	TTL time.Duration
}

// Store implements store.Store on Redis.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ store.Store = (*Store)(nil)

// New creates a Redis store.
func New(config Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultKeyPrefix
	}
	return &Store{
		client:    config.Client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
	}, nil
}

// Dial connects to the Redis server at url (redis://host:port/db).
func Dial(ctx context.Context, url string, config Config) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	config.Client = client
	return New(config)
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key string) (store.Entry, bool, error) {
	redisKey := s.keyPrefix + key
	data, err := s.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Entry{}, false, nil
	}
	if err != nil {
		return store.Entry{}, false, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	entry, err := store.Unmarshal(data)
	if err != nil {
		return store.Entry{}, false, err
	}
	return entry, true, nil
}

// Put implements store.Store.
func (s *Store) Put(ctx context.Context, key string, entry store.Entry) error {
	data, err := store.Marshal(entry)
	if err != nil {
		return err
	}
	redisKey := s.keyPrefix + key
	if err := s.client.Set(ctx, redisKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
