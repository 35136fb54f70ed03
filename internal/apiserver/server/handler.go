package server

import (
	"net/http"

	"trenzy-shop/internal/apiserver/auth"
	"trenzy-shop/internal/apiserver/order"
	"trenzy-shop/internal/apiserver/product"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 系统:
//   - GET /         - 服务运行状态
//   - GET /health   - 健康检查
//   - GET /metrics  - Prometheus 指标
//
// 认证 (Auth):
//   - POST /api/v1/register - 注册
//   - POST /api/v1/login    - 登录，返回令牌
//   - GET  /api/v1/me       - 解析 Bearer 令牌
//
// 商品 (Product):
//   - POST   /products             - 创建商品
//   - GET    /products             - 全部商品
//   - GET    /products/filter      - 按查询参数过滤
//   - GET    /products/flash-sale  - 限时特卖
//   - GET    /products/top-rated   - 高评分
//   - GET    /products/{id}        - 商品详情
//   - PATCH  /products/{id}        - 更新商品
//   - DELETE /products/{id}        - 删除商品
//
// 订单 (Order):
//   - POST   /orders               - 下单
//   - GET    /orders               - 订单列表（email / status 过滤）
//   - GET    /orders/{id}          - 订单详情
//   - PATCH  /orders/{id}/status   - 标记已送达
//   - DELETE /orders/{id}          - 删除订单
//
// 其余任何方法与路径返回 404 "API not found"。
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Status)
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())

	authHandler := auth.NewHandler(h.store, h.authCfg, h.limiter, h.logger)
	authHandler.RegisterRoutes(mux)

	productHandler := product.NewHandler(h.store, h.logger)
	productHandler.RegisterRoutes(mux)

	orderHandler := order.NewHandler(h.store, h.logger)
	orderHandler.RegisterRoutes(mux)

	// 兜底
	mux.HandleFunc("/", h.NotFound)

	// 中间件链：请求日志 → 指标 → CORS → 路由
	return requestLogMiddleware(h.logger, h.proxies)(h.metrics.MetricsMiddleware(corsMiddleware(mux)))
}
