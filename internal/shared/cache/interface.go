// Package cache 缓存层抽象接口
//
// 提供临时状态的存取能力，当前用于登录限流，由 Redis 实现。
package cache

import (
	"context"
	"time"
)

// LimiterConfig 登录限流配置
type LimiterConfig struct {
	// KeyPrefix 所有限流 key 的前缀，默认 "trenzy:ratelimit:"
	KeyPrefix string
	// Rate 每个窗口允许的尝试次数
	Rate int
	// Window 滑动窗口长度
	Window time.Duration
}

// LoginLimiter 登录尝试限流接口
//
// key 通常为 "login:" + 客户端 IP。
// 返回 false 表示已超限；返回错误时调用方应放行。
type LoginLimiter interface {
	AllowLogin(ctx context.Context, key string) (bool, error)
	ResetLogin(ctx context.Context, key string) error
	Close() error
}
