// Package httpx HTTP 响应信封、错误分类与通用请求工具
//
// 所有接口统一返回 {success, message, result?}，登录额外返回 token。
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes 请求体大小上限
const MaxBodyBytes = 1 << 20

// Envelope 统一响应结构
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
	Token   string `json:"token,omitempty"`
}

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteOK 写入成功响应
func WriteOK(w http.ResponseWriter, status int, message string, result any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Result: result})
}

// WriteError 写入失败响应
func WriteError(w http.ResponseWriter, apiErr *APIError) {
	WriteJSON(w, apiErr.Status, Envelope{Success: false, Message: apiErr.Message})
}

// DecodeJSON 解析 JSON 请求体
// 空请求体、非法 JSON、超过 MaxBodyBytes 均返回 InvalidRequest
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) *APIError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return InvalidRequest("request body is required")
		case errors.As(err, &maxErr):
			return InvalidRequest(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return InvalidRequest("invalid request body")
		}
	}
	if dec.More() {
		return InvalidRequest("invalid request body")
	}
	return nil
}
