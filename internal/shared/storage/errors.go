// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层存储引擎的错误类型，
// 各驱动实现（mongostore/repository）负责将底层错误转换为这些领域错误。
package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"regexp"
)

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows / mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（例如重复邮箱）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrInvalidField 字段名不合法（防止注入操作符或 JSON 路径）
	ErrInvalidField = errors.New("invalid field name")

	// ErrTimeout 存储操作超时
	ErrTimeout = errors.New("storage timeout")

	// ErrUnavailable 存储连接失败
	ErrUnavailable = errors.New("storage unavailable")
)

// ErrorClass 存储错误分类，仅用于日志与观测，不对外暴露
type ErrorClass string

const (
	ClassNone       ErrorClass = ""
	ClassNotFound   ErrorClass = "not_found"
	ClassDuplicate  ErrorClass = "duplicate"
	ClassInvalid    ErrorClass = "invalid_field"
	ClassTimeout    ErrorClass = "timeout"
	ClassConnection ErrorClass = "connection"
	ClassUnknown    ErrorClass = "unknown"
)

// Classify 对存储错误进行分类
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrDuplicate):
		return ClassDuplicate
	case errors.Is(err, ErrInvalidField):
		return ClassInvalid
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, ErrUnavailable), errors.Is(err, driver.ErrBadConn):
		return ClassConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassConnection
	}
	return ClassUnknown
}

// fieldNameRe 允许的文档字段名
var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidField 字段名是否可安全用于查询/更新
func ValidField(name string) bool {
	return fieldNameRe.MatchString(name)
}
