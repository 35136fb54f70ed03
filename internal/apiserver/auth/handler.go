package auth

import (
	"context"
	"net/http"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/cache"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/pkg/logging"
)

// Handler 认证 HTTP 处理器
type Handler struct {
	svc     *Service
	cfg     Config
	limiter cache.LoginLimiter
	logger  *logging.Logger
}

// NewHandler 创建认证处理器
// limiter 为 nil 时不限流
func NewHandler(store storage.UserStore, cfg Config, limiter cache.LoginLimiter, logger *logging.Logger) *Handler {
	if limiter == nil {
		limiter = cache.NewNoOpLimiter()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		svc:     NewService(store, cfg),
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/register", h.Register)
	mux.HandleFunc("POST /api/v1/login", h.Login)
	mux.Handle("GET /api/v1/me", Middleware(h.cfg)(http.HandlerFunc(h.Me)))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 用户注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if apiErr := httpx.DecodeJSON(w, r, &req); apiErr != nil {
		httpx.WriteError(w, apiErr)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, httpx.InvalidRequest("email and password are required"))
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, r, h.logger, "register", err)
		return
	}

	h.logger.WithContext(r.Context()).Info("user registered", "user_id", user.ID)
	httpx.WriteOK(w, http.StatusCreated, "User registered successfully", nil)
}

// Login 用户登录
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := httpx.DecodeJSON(w, r, &req); apiErr != nil {
		httpx.WriteError(w, apiErr)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, httpx.InvalidRequest("email and password are required"))
		return
	}

	key := "login:" + httpx.ClientIP(r)
	if !h.allowLogin(r.Context(), key) {
		httpx.WriteError(w, httpx.RateLimited())
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, r, h.logger, "login", err)
		return
	}

	if err := h.limiter.ResetLogin(r.Context(), key); err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Warn("reset login limiter failed")
	}

	h.logger.WithContext(logging.ContextWithUser(r.Context(), user.Email)).Info("user logged in")
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}

// Me 返回当前令牌中的身份信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		httpx.WriteError(w, httpx.Unauthorized("not authenticated"))
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Token is valid", identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	})
}

// allowLogin 限流器出错时放行
func (h *Handler) allowLogin(ctx context.Context, key string) bool {
	ok, err := h.limiter.AllowLogin(ctx, key)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("login limiter unavailable, allowing request")
		return true
	}
	return ok
}
