// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义、健康检查、状态与兜底接口
//   - handler.go: 路由表与中间件链
//   - middleware.go: 请求日志、CORS
//   - metrics.go: Prometheus 指标
package server

import (
	"net/http"
	"time"

	"trenzy-shop/internal/apiserver/auth"
	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/cache"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/pkg/logging"
)

// Handler API 处理器
//
// 依赖在 main 中构造一次，通过构造函数注入：
//   - store: 持久化存储（MongoDB / SQLite / PostgreSQL）
//   - limiter: 登录限流（未配置 Redis 时为 NoOp）
type Handler struct {
	store   storage.PersistentStore
	limiter cache.LoginLimiter
	authCfg auth.Config
	logger  *logging.Logger
	metrics *Metrics
	proxies *httpx.TrustedProxies
	now     func() time.Time
}

// NewHandler 创建 Handler 实例
// 存储实现支持 storage.Observable 时自动注册查询观察者
func NewHandler(store storage.PersistentStore, limiter cache.LoginLimiter, authCfg auth.Config, logger *logging.Logger) *Handler {
	if limiter == nil {
		limiter = cache.NewNoOpLimiter()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Handler{
		store:   store,
		limiter: limiter,
		authCfg: authCfg,
		logger:  logger,
		metrics: NewMetrics("trenzy"),
		now:     time.Now,
	}
	if obs, ok := store.(storage.Observable); ok {
		obs.SetObserver(h.metrics.QueryObserver(logger))
	}
	return h
}

// SetTrustedProxies 设置可信反向代理，nil 表示不采信任何转发头
func (h *Handler) SetTrustedProxies(p *httpx.TrustedProxies) {
	h.proxies = p
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

type statusResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Status 服务运行状态
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		Success:   true,
		Message:   "Server is running smoothly",
		Timestamp: h.now().UTC(),
	})
}

// Health 健康检查接口
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound 未匹配任何路由（不区分方法）
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, httpx.NotFound("API not found"))
}
