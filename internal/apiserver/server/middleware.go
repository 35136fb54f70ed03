package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/pkg/logging"
)

// TraceHeader 请求追踪 ID 头
const TraceHeader = "X-Request-ID"

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogMiddleware 为每个请求分配 trace id、解析客户端 IP 并记录访问日志
// 客户端传入的 X-Request-ID 会被沿用；转发头只在对端为可信代理时采信
func requestLogMiddleware(logger *logging.Logger, proxies *httpx.TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			w.Header().Set(TraceHeader, traceID)
			clientIP := proxies.ClientIP(r)
			ctx := logging.ContextWithTraceID(r.Context(), traceID)
			r = r.WithContext(httpx.WithClientIP(ctx, clientIP))

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.WithContext(r.Context()).HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), clientIP)
		})
	}
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
