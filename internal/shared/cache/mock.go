// Package cache 缓存层 mock 实现
package cache

import (
	"context"
)

// ============================================================================
// NoOpLimiter - 不限流的 LoginLimiter 实现（未配置 Redis 或测试时使用）
// ============================================================================

// NoOpLimiter 总是放行
type NoOpLimiter struct{}

// NewNoOpLimiter 创建 NoOpLimiter 实例
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

func (l *NoOpLimiter) AllowLogin(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (l *NoOpLimiter) ResetLogin(ctx context.Context, key string) error {
	return nil
}

// Close 关闭限流器
func (l *NoOpLimiter) Close() error {
	return nil
}

// 确保 NoOpLimiter 实现了 LoginLimiter 接口
var _ LoginLimiter = (*NoOpLimiter)(nil)
