// Package order 订单 HTTP 接口
package order

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storagetypes"
	"trenzy-shop/pkg/logging"
)

const (
	msgInvalidID = "Invalid order ID"
	msgNotFound  = "Order not found"
)

// Handler 订单 HTTP 处理器
type Handler struct {
	store  storage.OrderStore
	logger *logging.Logger
	now    func() time.Time
	digit  func() int
}

// NewHandler 创建订单处理器
func NewHandler(store storage.OrderStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		store:  store,
		logger: logger,
		now:    time.Now,
		digit:  func() int { return rand.IntN(10) },
	}
}

// RegisterRoutes 注册订单路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.Create)
	mux.HandleFunc("GET /orders", h.List)
	mux.HandleFunc("GET /orders/{id}", h.Get)
	mux.HandleFunc("PATCH /orders/{id}/status", h.MarkDelivered)
	mux.HandleFunc("DELETE /orders/{id}", h.Delete)
}

// Create 创建订单
// status / invoiceDate / invoiceNumber 由服务端填写
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.Document
	if apiErr := httpx.DecodeJSON(w, r, &fields); apiErr != nil {
		httpx.WriteError(w, apiErr)
		return
	}
	if fields == nil {
		httpx.WriteError(w, httpx.InvalidRequest("order must be a JSON object"))
		return
	}

	doc := model.NewOrder(fields, h.now(), h.digit())
	id, err := h.store.CreateOrder(r.Context(), doc)
	if err != nil {
		httpx.Fail(w, r, h.logger, "create order", err)
		return
	}
	doc[model.FieldID] = id

	h.logger.WithContext(r.Context()).Info("order created",
		"order_id", id,
		"invoice", doc[model.OrderFieldInvoiceNumber],
	)
	httpx.WriteOK(w, http.StatusCreated, "Order placed successfully", doc)
}

// List 查询订单，支持 email / status 精确过滤
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter storagetypes.Filter
	if email := q.Get(model.OrderFieldEmail); email != "" {
		filter = filter.Eq(model.OrderFieldEmail, email)
	}
	if status := q.Get(model.OrderFieldStatus); status != "" {
		filter = filter.Eq(model.OrderFieldStatus, status)
	}

	docs, err := h.store.ListOrders(r.Context(), filter)
	if err != nil {
		httpx.Fail(w, r, h.logger, "list orders", err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	httpx.WriteOK(w, http.StatusOK, "Orders fetched successfully", docs)
}

// Get 按 ID 查询订单
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get order", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Order fetched successfully", doc)
}

// MarkDelivered 将订单状态置为 delivered（幂等）
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.store.UpdateOrderStatus(r.Context(), id, model.OrderStatusDelivered)
	if err != nil {
		h.fail(w, r, "update order status", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Order status updated successfully", doc)
}

// Delete 删除订单
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.store.DeleteOrder(r.Context(), id)
	if err != nil {
		h.fail(w, r, "delete order", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Order deleted successfully", doc)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !model.IsValidID(id) {
		httpx.WriteError(w, httpx.InvalidIdentifier(msgInvalidID))
		return "", false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteError(w, httpx.NotFound(msgNotFound))
		return
	}
	httpx.Fail(w, r, h.logger, op, err)
}
