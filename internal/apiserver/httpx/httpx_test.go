package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK(rec, http.StatusOK, "done", []string{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.Equal(t, []any{}, body["result"])
	assert.NotContains(t, body, "token")
}

func TestWriteOK_OmitsNilResult(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK(rec, http.StatusCreated, "created", nil)
	body := decodeEnvelope(t, rec)
	assert.NotContains(t, body, "result")
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err    *APIError
		code   ErrorCode
		status int
		msg    string
	}{
		{DuplicateUser(), CodeDuplicateUser, 400, "User already exists"},
		{InvalidCredentials(), CodeInvalidCredentials, 401, "Invalid email or password"},
		{InvalidIdentifier("Invalid product ID"), CodeInvalidIdentifier, 400, "Invalid product ID"},
		{InvalidQuery("bad price"), CodeInvalidQuery, 400, "bad price"},
		{NotFound("Product not found"), CodeNotFound, 404, "Product not found"},
		{Transient(errors.New("x")), CodeTransient, 500, TransientMessage},
		{RateLimited(), CodeTransient, 429, TransientMessage},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.msg, tt.err.Message)
		})
	}
}

func TestFromStorage(t *testing.T) {
	assert.Equal(t, CodeNotFound, FromStorage(fmt.Errorf("get: %w", storage.ErrNotFound), "Order not found").Code)
	assert.Equal(t, "Order not found", FromStorage(storage.ErrNotFound, "Order not found").Message)
	assert.Equal(t, CodeInvalidRequest, FromStorage(storage.ErrInvalidField, "").Code)

	transient := FromStorage(context.DeadlineExceeded, "")
	assert.Equal(t, CodeTransient, transient.Code)
	assert.ErrorIs(t, transient, context.DeadlineExceeded)

	orig := InvalidQuery("bad")
	assert.Same(t, orig, FromStorage(orig, ""))
}

func TestFail_HidesInternalError(t *testing.T) {
	var logBuf bytes.Buffer
	logger := logging.New(logging.Config{Format: "json", Writer: &logBuf, Component: "test"})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req = req.WithContext(logging.ContextWithTraceID(req.Context(), "trace-1"))
	rec := httptest.NewRecorder()

	Fail(rec, req, logger, "list products", fmt.Errorf("find: %w", storage.ErrUnavailable))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, TransientMessage, body["message"])
	assert.NotContains(t, rec.Body.String(), "unavailable")

	logged := logBuf.String()
	assert.Contains(t, logged, `"error_class":"connection"`)
	assert.Contains(t, logged, `"trace_id":"trace-1"`)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"email":"a@b.c"}`, ""},
		{"empty", ``, "request body is required"},
		{"malformed", `{"email":`, "invalid request body"},
		{"trailing data", `{"email":"a"} {"x":1}`, "invalid request body"},
		{"too large", `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "request body exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			apiErr := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr == "" {
				require.Nil(t, apiErr)
				assert.Equal(t, "a@b.c", p.Email)
				return
			}
			require.NotNil(t, apiErr)
			assert.Equal(t, CodeInvalidRequest, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.wantErr)
		})
	}
}

func TestClientIP_IgnoresForwardedHeadersByDefault(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded ignored", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "9.9.9.9:1234", "9.9.9.9"},
		{"real ip ignored", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1234", "9.9.9.9"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"ipv6 remote", nil, "[::1]:8080", "::1"},
		{"no port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestClientIP_FromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	req = req.WithContext(WithClientIP(req.Context(), "1.1.1.1"))
	assert.Equal(t, "1.1.1.1", ClientIP(req))
}

func TestTrustedProxies_ClientIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", "127.0.0.1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"untrusted peer spoofing", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "9.9.9.9:1234", "9.9.9.9"},
		{"trusted peer", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "10.0.0.5:1234", "1.1.1.1"},
		{"client prepends fake hop", map[string]string{"X-Forwarded-For": "6.6.6.6, 1.1.1.1"}, "127.0.0.1:1234", "1.1.1.1"},
		{"proxy chain", map[string]string{"X-Forwarded-For": "1.1.1.1, 10.0.0.7"}, "10.0.0.5:1234", "1.1.1.1"},
		{"garbage hop stops", map[string]string{"X-Forwarded-For": "1.1.1.1, junk"}, "10.0.0.5:1234", "10.0.0.5"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "10.0.0.5:1234", "3.3.3.3"},
		{"no headers", nil, "10.0.0.5:1234", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, proxies.ClientIP(req))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies(nil)
	require.NoError(t, err)
	assert.Nil(t, proxies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")
	assert.Equal(t, "10.0.0.5", proxies.ClientIP(req))

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}
