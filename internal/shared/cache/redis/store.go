// Package redis Redis 缓存实现
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"trenzy-shop/internal/shared/cache"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "trenzy:ratelimit:"

// Store Redis 缓存存储
type Store struct {
	client    redis.Cmdable
	closer    func() error
	keyPrefix string
	rate      int
	window    time.Duration
}

var _ cache.LoginLimiter = (*Store)(nil)

// NewStore 创建 Redis 缓存实例
func NewStore(addr, password string, db int, cfg cache.LimiterConfig) (*Store, error) {
	return connect(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}, cfg)
}

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string, cfg cache.LimiterConfig) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return connect(opts, cfg)
}

func connect(opts *redis.Options, cfg cache.LimiterConfig) (*Store, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	s := NewStoreFromClient(client, cfg)
	s.closer = client.Close
	return s, nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例，客户端生命周期由调用方管理
func NewStoreFromClient(client redis.Cmdable, cfg cache.LimiterConfig) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{
		client:    client,
		keyPrefix: prefix,
		rate:      cfg.Rate,
		window:    cfg.Window,
	}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
