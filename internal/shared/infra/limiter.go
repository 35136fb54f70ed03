package infra

import (
	"log"

	"trenzy-shop/internal/config"
	"trenzy-shop/internal/shared/cache"
	cacheredis "trenzy-shop/internal/shared/cache/redis"
)

// NewLimiter 创建登录限流器
// Redis 未启用或 login_rate <= 0 时返回 NoOp
func NewLimiter(cfg *config.Config) (cache.LoginLimiter, error) {
	if !cfg.RedisEnabled || cfg.LoginRate <= 0 {
		return cache.NewNoOpLimiter(), nil
	}

	store, err := cacheredis.NewStoreFromURL(cfg.RedisURL, cache.LimiterConfig{
		Rate:   cfg.LoginRate,
		Window: cfg.LoginWindow,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Infra] Login limiter enabled: %d attempts per %s", cfg.LoginRate, cfg.LoginWindow)
	return store, nil
}
