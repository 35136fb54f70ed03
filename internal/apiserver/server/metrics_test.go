package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/products", "/products"},
		{"/products/65f0c2a1b2c3d4e5f6a7b8c9", "/products/{id}"},
		{"/orders/65f0c2a1b2c3d4e5f6a7b8c9/status", "/orders/{id}/status"},
		{"/products/filter", "/products/filter"},
		{"/api/v1/login", "/api/v1/login"},
		{"/random/path/123", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

// scrape 读取 /metrics 文本输出
func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics("test")
	h := m.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/65f0c2a1b2c3d4e5f6a7b8c9", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/65f0c2a1b2c3d4e5f6a7b8ca", nil))

	out := scrape(t, m)
	assert.Contains(t, out, `test_http_requests_total{method="GET",path="/products/{id}",status="418"} 2`)
	assert.Contains(t, out, "test_http_requests_in_flight 0")
}

func TestQueryObserver(t *testing.T) {
	m := NewMetrics("test")
	obs := m.QueryObserver(logging.Discard())

	obs("find", "products", time.Millisecond, nil)
	obs("find", "products", time.Millisecond, context.DeadlineExceeded)
	obs("find_one", "orders", time.Millisecond, storage.ErrNotFound)

	out := scrape(t, m)
	assert.Contains(t, out, `test_db_queries_total{collection="products",error_class="",operation="find"} 1`)
	assert.Contains(t, out, `test_db_queries_total{collection="products",error_class="timeout",operation="find"} 1`)
	assert.Contains(t, out, `test_db_queries_total{collection="orders",error_class="not_found",operation="find_one"} 1`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	// 先产生一次请求
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(raw), `trenzy_http_requests_total{method="GET",path="/health",status="200"} 1`), string(raw))
	assert.Contains(t, string(raw), "go_goroutines")
}
