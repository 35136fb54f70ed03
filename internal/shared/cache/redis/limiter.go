package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow 基于有序集合的滑动窗口，原子执行
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local rate = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	if redis.call('ZCARD', key) >= rate then
		return 0
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)
	return 1
`)

// AllowLogin 记录一次登录尝试，超过窗口内允许次数时返回 false
// rate <= 0 表示不限流
func (s *Store) AllowLogin(ctx context.Context, key string) (bool, error) {
	if s.rate <= 0 || s.window <= 0 {
		return true, nil
	}

	now := time.Now()
	result, err := slidingWindow.Run(ctx, s.client, []string{s.keyPrefix + key},
		now.Add(-s.window).UnixMicro(),
		now.UnixMicro(),
		s.rate,
		s.window.Milliseconds(),
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	return result == 1, nil
}

// ResetLogin 清除指定 key 的尝试记录（登录成功后调用）
func (s *Store) ResetLogin(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.keyPrefix+key).Err()
}
