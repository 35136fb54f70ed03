package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storage/repository"
	sqlitedriver "trenzy-shop/internal/shared/storage/driver/sqlite"
	"trenzy-shop/internal/shared/storagetypes"
	"trenzy-shop/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

func newMux(store storage.ProductStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(store, logging.Discard()).RegisterRoutes(mux)
	return mux
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func do(t *testing.T, mux http.Handler, method, path, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func seed(t *testing.T, store *repository.Store, docs ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(docs))
	for _, raw := range docs {
		var doc model.Document
		require.NoError(t, json.Unmarshal([]byte(raw), &doc))
		id, err := store.CreateProduct(context.Background(), doc)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func names(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var docs []model.Document
	require.NoError(t, json.Unmarshal(raw, &docs))
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["name"].(string))
	}
	return out
}

func TestProductCRUD(t *testing.T) {
	store := newTestStore(t)
	mux := newMux(store)

	code, resp := do(t, mux, http.MethodPost, "/products", `{"name":"Tee","price":20,"category":"shirts"}`)
	require.Equal(t, http.StatusCreated, code)
	var inserted InsertResult
	require.NoError(t, json.Unmarshal(resp.Result, &inserted))
	assert.True(t, inserted.Acknowledged)
	require.True(t, model.IsValidID(inserted.InsertedID))

	code, resp = do(t, mux, http.MethodGet, "/products/"+inserted.InsertedID, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Product fetched successfully", resp.Message)
	var doc model.Document
	require.NoError(t, json.Unmarshal(resp.Result, &doc))
	assert.Equal(t, "Tee", doc["name"])
	assert.Equal(t, inserted.InsertedID, doc["_id"])

	code, resp = do(t, mux, http.MethodPatch, "/products/"+inserted.InsertedID, `{"price":25}`)
	assert.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Result, &doc))
	assert.Equal(t, 25.0, doc["price"])
	assert.Equal(t, "Tee", doc["name"])

	code, _ = do(t, mux, http.MethodDelete, "/products/"+inserted.InsertedID, "")
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, mux, http.MethodGet, "/products/"+inserted.InsertedID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not found", resp.Message)
}

func TestProductList(t *testing.T) {
	store := newTestStore(t)
	mux := newMux(store)

	code, resp := do(t, mux, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "All Product fetched successfully", resp.Message)
	assert.JSONEq(t, `[]`, string(resp.Result))

	seed(t, store, `{"name":"a"}`, `{"name":"b"}`)
	_, resp = do(t, mux, http.MethodGet, "/products", "")
	assert.Equal(t, []string{"a", "b"}, names(t, resp.Result))
}

func TestProductFilterEndpoints(t *testing.T) {
	store := newTestStore(t)
	mux := newMux(store)
	seed(t, store,
		`{"name":"p1","rating":4.5,"category":"shirts","price":15,"flashSale":true,"topRated":false}`,
		`{"name":"p2","rating":4,"category":"shirts","price":30,"flashSale":"true","topRated":true}`,
		`{"name":"p3","rating":3,"category":"pants","price":50,"flashSale":false,"topRated":true}`,
	)

	tests := []struct {
		path string
		want []string
	}{
		{"/products/filter", []string{"p1", "p2", "p3"}},
		{"/products/filter?rating=4.5", []string{"p1"}},
		{"/products/filter?rating=lte:4", []string{"p2", "p3"}},
		{"/products/filter?category=shirts&price=10-20", []string{"p1"}},
		{"/products/filter?price=15-50", []string{"p1", "p2", "p3"}},
		{"/products/filter?flashSale=true", []string{"p1"}},
		{"/products/filter?flashSale=false", []string{"p3"}},
		{"/products/filter?topRated=true&category=pants", []string{"p3"}},
		{"/products/flash-sale", []string{"p1"}},
		{"/products/top-rated", []string{"p2", "p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, resp := do(t, mux, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, code)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.want, names(t, resp.Result))
		})
	}
}

func TestProductFilter_PriceBounds(t *testing.T) {
	store := newTestStore(t)
	mux := newMux(store)
	seed(t, store,
		`{"name":"below","price":9.99}`,
		`{"name":"low","price":10}`,
		`{"name":"high","price":50}`,
		`{"name":"above","price":50.01}`,
	)

	code, resp := do(t, mux, http.MethodGet, "/products/filter?price=10-50", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"low", "high"}, names(t, resp.Result))
}

func TestProductFilter_InvalidQuery(t *testing.T) {
	mux := newMux(newTestStore(t))

	code, resp := do(t, mux, http.MethodGet, "/products/filter?price=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid query")
}

// spyStore 记录是否访问了存储
type spyStore struct {
	storage.ProductStore
	calls int
	err   error
}

func (s *spyStore) GetProduct(ctx context.Context, id string) (model.Document, error) {
	s.calls++
	return nil, s.err
}

func (s *spyStore) DeleteProduct(ctx context.Context, id string) (model.Document, error) {
	s.calls++
	return nil, s.err
}

func (s *spyStore) ListProducts(ctx context.Context, f storagetypes.Filter) ([]model.Document, error) {
	s.calls++
	return nil, s.err
}

func TestProduct_InvalidIDSkipsStorage(t *testing.T) {
	spy := &spyStore{}
	mux := newMux(spy)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		code, resp := do(t, mux, method, "/products/not-an-id", `{"price":1}`)
		assert.Equal(t, http.StatusBadRequest, code, method)
		assert.Equal(t, "Invalid product ID", resp.Message)
	}
	assert.Zero(t, spy.calls)
}

func TestProduct_StorageFailureIsTransient(t *testing.T) {
	spy := &spyStore{err: context.DeadlineExceeded}
	mux := newMux(spy)

	code, resp := do(t, mux, http.MethodGet, "/products/"+model.NewID(), "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, httpx.TransientMessage, resp.Message)

	code, _ = do(t, mux, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestProductUpdate_BadBodies(t *testing.T) {
	store := newTestStore(t)
	mux := newMux(store)
	ids := seed(t, store, `{"name":"a"}`)

	code, resp := do(t, mux, http.MethodPatch, "/products/"+ids[0], `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "at least one field")

	code, _ = do(t, mux, http.MethodPatch, "/products/"+ids[0], `{"bad field":1}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, mux, http.MethodPatch, "/products/"+model.NewID(), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, mux, http.MethodPost, "/products", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, code)
}
