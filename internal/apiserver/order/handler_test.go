package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storage/repository"
	sqlitedriver "trenzy-shop/internal/shared/storage/driver/sqlite"
	"trenzy-shop/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*http.ServeMux, *repository.Store) {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, logging.Discard())
	h.now = func() time.Time { return fixedNow }
	h.digit = func() int { return 7 }

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux, store
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

func TestCreateOrder(t *testing.T) {
	mux, store := newTestHandler(t)

	code, resp := do(t, mux, http.MethodPost, "/orders",
		`{"email":"a@x.com","items":[{"sku":"t1","qty":2}],"status":"delivered","_id":"forged"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)

	var doc model.Document
	require.NoError(t, json.Unmarshal(resp.Result, &doc))
	assert.Equal(t, "pending", doc["status"])
	assert.Equal(t, "INV-"+"1772366400000"+"7", doc["invoiceNumber"])
	assert.Equal(t, "2026-03-01T12:00:00Z", doc["invoiceDate"])
	id := doc["_id"].(string)
	require.True(t, model.IsValidID(id))

	stored, err := store.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "pending", stored["status"])
	assert.Equal(t, "a@x.com", stored["email"])
}

func TestOrderLifecycle(t *testing.T) {
	mux, _ := newTestHandler(t)

	_, resp := do(t, mux, http.MethodPost, "/orders", `{"email":"a@x.com"}`)
	var created model.Document
	require.NoError(t, json.Unmarshal(resp.Result, &created))
	id := created["_id"].(string)

	for i := 0; i < 2; i++ {
		code, resp := do(t, mux, http.MethodPatch, "/orders/"+id+"/status", "")
		require.Equal(t, http.StatusOK, code)
		var doc model.Document
		require.NoError(t, json.Unmarshal(resp.Result, &doc))
		assert.Equal(t, "delivered", doc["status"])
		assert.Equal(t, created["invoiceNumber"], doc["invoiceNumber"])
	}

	code, resp := do(t, mux, http.MethodGet, "/orders/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Order fetched successfully", resp.Message)

	code, _ = do(t, mux, http.MethodDelete, "/orders/"+id, "")
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, mux, http.MethodPatch, "/orders/"+id+"/status", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", resp.Message)
}

func TestListOrders(t *testing.T) {
	mux, _ := newTestHandler(t)
	do(t, mux, http.MethodPost, "/orders", `{"email":"a@x.com"}`)
	do(t, mux, http.MethodPost, "/orders", `{"email":"b@x.com"}`)
	_, resp := do(t, mux, http.MethodPost, "/orders", `{"email":"a@x.com"}`)
	var third model.Document
	require.NoError(t, json.Unmarshal(resp.Result, &third))
	do(t, mux, http.MethodPatch, "/orders/"+third["_id"].(string)+"/status", "")

	count := func(path string) int {
		code, resp := do(t, mux, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, code)
		var docs []model.Document
		require.NoError(t, json.Unmarshal(resp.Result, &docs))
		return len(docs)
	}

	assert.Equal(t, 3, count("/orders"))
	assert.Equal(t, 2, count("/orders?email=a@x.com"))
	assert.Equal(t, 1, count("/orders?email=a@x.com&status=delivered"))
	assert.Equal(t, 2, count("/orders?status=pending"))
	assert.Equal(t, 0, count("/orders?email=nobody@x.com"))
}

// countingStore 统计存储调用次数
type countingStore struct {
	storage.OrderStore
	calls int
}

func (s *countingStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Document, error) {
	s.calls++
	return nil, storage.ErrNotFound
}

func TestOrder_InvalidID(t *testing.T) {
	store := &countingStore{}
	mux := http.NewServeMux()
	NewHandler(store, nil).RegisterRoutes(mux)

	code, resp := do(t, mux, http.MethodPatch, "/orders/xyz/status", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid order ID", resp.Message)
	assert.Zero(t, store.calls)

	code, _ = do(t, mux, http.MethodPatch, "/orders/"+model.NewID()+"/status", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 1, store.calls)
}
