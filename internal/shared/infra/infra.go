// Package infra 基础设施聚合层
//
// 根据配置统一初始化并注入：
//   - Storage：持久化存储（MongoDB 默认，可选 SQLite / PostgreSQL）
//   - Limiter：登录限流（Redis，未启用时为 NoOp）
package infra

import (
	"errors"
	"fmt"
	"log"

	"trenzy-shop/internal/config"
	"trenzy-shop/internal/shared/cache"
	"trenzy-shop/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 持久化存储
	Storage storage.PersistentStore

	// Limiter 登录限流
	Limiter cache.LoginLimiter
}

// New 按配置创建基础设施
// 存储不可用时返回错误；Redis 不可用时降级为不限流
func New(cfg *config.Config) (*Infrastructure, error) {
	store, err := NewStorage(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DatabaseDBName)
	if err != nil {
		return nil, err
	}

	limiter, err := NewLimiter(cfg)
	if err != nil {
		log.Printf("[Infra] Redis unavailable, login rate limiting disabled: %v", err)
		limiter = cache.NewNoOpLimiter()
	}

	return &Infrastructure{Storage: store, Limiter: limiter}, nil
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var errs []error

	if i.Limiter != nil {
		if err := i.Limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close limiter: %w", err))
		}
	}

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// NewNoOpInfrastructure 创建不限流的基础设施（用于测试）
func NewNoOpInfrastructure(store storage.PersistentStore) *Infrastructure {
	return &Infrastructure{
		Storage: store,
		Limiter: cache.NewNoOpLimiter(),
	}
}
