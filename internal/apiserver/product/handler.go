// Package product 商品 HTTP 接口与查询过滤器构建
package product

import (
	"errors"
	"net/http"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storagetypes"
	"trenzy-shop/pkg/logging"
)

const (
	msgInvalidID = "Invalid product ID"
	msgNotFound  = "Product not found"
)

// Handler 商品 HTTP 处理器
type Handler struct {
	store  storage.ProductStore
	logger *logging.Logger
}

// NewHandler 创建商品处理器
func NewHandler(store storage.ProductStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes 注册商品路由
// 具体路径（filter / flash-sale / top-rated）优先于 {id}
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /products", h.Create)
	mux.HandleFunc("GET /products", h.List)
	mux.HandleFunc("GET /products/filter", h.Filter)
	mux.HandleFunc("GET /products/flash-sale", h.FlashSale)
	mux.HandleFunc("GET /products/top-rated", h.TopRated)
	mux.HandleFunc("GET /products/{id}", h.Get)
	mux.HandleFunc("PATCH /products/{id}", h.Update)
	mux.HandleFunc("DELETE /products/{id}", h.Delete)
}

// InsertResult 创建结果
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// Create 创建商品，文档按原样保存
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if apiErr := httpx.DecodeJSON(w, r, &doc); apiErr != nil {
		httpx.WriteError(w, apiErr)
		return
	}
	if doc == nil {
		httpx.WriteError(w, httpx.InvalidRequest("product must be a JSON object"))
		return
	}

	id, err := h.store.CreateProduct(r.Context(), doc)
	if err != nil {
		httpx.Fail(w, r, h.logger, "create product", err)
		return
	}
	httpx.WriteOK(w, http.StatusCreated, "Product created successfully", InsertResult{Acknowledged: true, InsertedID: id})
}

// List 返回全部商品
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, storagetypes.Filter{}, "All Product fetched successfully")
}

// Filter 按查询参数过滤商品
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	filter, err := BuildFilter(r.URL.Query())
	if err != nil {
		httpx.WriteError(w, httpx.InvalidQuery(err.Error()))
		return
	}
	h.find(w, r, filter, "Query Product fetched successfully")
}

// FlashSale 限时特卖商品
func (h *Handler) FlashSale(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, FlashSaleFilter(), "Flash sale products fetched successfully")
}

// TopRated 高评分商品
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, TopRatedFilter(), "Top rated products fetched successfully")
}

// Get 按 ID 查询商品
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get product", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Product fetched successfully", doc)
}

// Update 覆盖更新顶层字段
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var patch model.Document
	if apiErr := httpx.DecodeJSON(w, r, &patch); apiErr != nil {
		httpx.WriteError(w, apiErr)
		return
	}
	if len(patch.WithoutID()) == 0 {
		httpx.WriteError(w, httpx.InvalidRequest("update body must contain at least one field"))
		return
	}

	doc, err := h.store.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Product updated successfully", doc)
}

// Delete 删除商品并返回被删除的文档
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, "delete product", err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Product deleted successfully", doc)
}

// ============================================================================
// 工具函数
// ============================================================================

func (h *Handler) find(w http.ResponseWriter, r *http.Request, filter storagetypes.Filter, message string) {
	docs, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		httpx.Fail(w, r, h.logger, "list products", err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	httpx.WriteOK(w, http.StatusOK, message, docs)
}

// pathID 校验路径中的 ID，非法时直接写入 400
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
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
