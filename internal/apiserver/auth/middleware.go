package auth

import (
	"net/http"
	"strings"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/pkg/logging"
)

// Middleware 创建 JWT 认证中间件
// 校验 Authorization: Bearer <token>，通过后将声明注入 context
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpx.WriteError(w, httpx.Unauthorized("missing authorization header"))
				return
			}
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				httpx.WriteError(w, httpx.Unauthorized("invalid authorization header"))
				return
			}

			claims, err := ParseToken(cfg, strings.TrimSpace(token))
			if err != nil {
				httpx.WriteError(w, httpx.Unauthorized("invalid or expired token"))
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logging.ContextWithUser(ctx, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
