package httpx

import (
	"errors"
	"net/http"

	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/pkg/logging"
)

// ErrorCode 对外错误分类
type ErrorCode string

const (
	CodeDuplicateUser      ErrorCode = "DuplicateUser"
	CodeInvalidCredentials ErrorCode = "InvalidCredentials"
	CodeInvalidIdentifier  ErrorCode = "InvalidIdentifier"
	CodeInvalidQuery       ErrorCode = "InvalidQuery"
	CodeInvalidRequest     ErrorCode = "InvalidRequest"
	CodeUnauthorized       ErrorCode = "Unauthorized"
	CodeNotFound           ErrorCode = "NotFound"
	CodeTransient          ErrorCode = "TransientError"
)

// TransientMessage 存储异常时对外的统一提示，不暴露内部原因
const TransientMessage = "too many requests, try after reloading"

// APIError 带 HTTP 状态码的业务错误
type APIError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error // 内部原因，仅记录日志
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ============================================================================
// 构造函数
// ============================================================================

func DuplicateUser() *APIError {
	return &APIError{Code: CodeDuplicateUser, Status: http.StatusBadRequest, Message: "User already exists"}
}

func InvalidCredentials() *APIError {
	return &APIError{Code: CodeInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password"}
}

func InvalidIdentifier(message string) *APIError {
	return &APIError{Code: CodeInvalidIdentifier, Status: http.StatusBadRequest, Message: message}
}

func InvalidQuery(message string) *APIError {
	return &APIError{Code: CodeInvalidQuery, Status: http.StatusBadRequest, Message: message}
}

func InvalidRequest(message string) *APIError {
	return &APIError{Code: CodeInvalidRequest, Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *APIError {
	return &APIError{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) *APIError {
	return &APIError{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

func Transient(err error) *APIError {
	return &APIError{Code: CodeTransient, Status: http.StatusInternalServerError, Message: TransientMessage, Err: err}
}

// RateLimited 限流同属 TransientError，状态码为 429
func RateLimited() *APIError {
	return &APIError{Code: CodeTransient, Status: http.StatusTooManyRequests, Message: TransientMessage}
}

// FromStorage 将存储层错误映射为 APIError
// notFound 为实体不存在时对外的提示
func FromStorage(err error, notFound string) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, storage.ErrNotFound):
		return NotFound(notFound)
	case errors.Is(err, storage.ErrInvalidField):
		return InvalidRequest("invalid field name")
	}
	return Transient(err)
}

// Fail 写入错误响应；TransientError 记录内部错误分类
func Fail(w http.ResponseWriter, r *http.Request, logger *logging.Logger, op string, err error) {
	apiErr := FromStorage(err, "Resource not found")
	if apiErr.Code == CodeTransient && apiErr.Err != nil {
		logger.WithContext(r.Context()).WithError(apiErr.Err).Error("request failed",
			"op", op,
			"error_class", string(storage.Classify(apiErr.Err)),
		)
	}
	WriteError(w, apiErr)
}
