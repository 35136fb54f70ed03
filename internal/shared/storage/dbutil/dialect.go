// Package dbutil 提供数据库方言抽象和工具函数
//
// 通过 Dialect 接口屏蔽不同数据库（PostgreSQL、SQLite）的 SQL 差异，
// 使 repository 层可以编写与数据库无关的文档存储逻辑。
package dbutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DriverType 数据库驱动类型
type DriverType string

const (
	DriverPostgres DriverType = "postgres"
	DriverSQLite   DriverType = "sqlite"
)

// Dialect 数据库方言接口
//
// 文档以 JSON 形式保存在 doc 列中，不同数据库的差异通过该接口屏蔽：
//   - 占位符：PostgreSQL 用 $1, $2；SQLite 用 ?
//   - JSON 路径访问：SQLite 用 json_extract/json_type；PostgreSQL 用 ->、->> 和 jsonb_typeof
//   - 唯一约束冲突的错误类型
type Dialect interface {
	// DriverType 返回驱动类型标识
	DriverType() DriverType

	// Rebind 将 PostgreSQL 风格的占位符 ($1, $2, ...) 转换为目标数据库的占位符格式
	Rebind(query string) string

	// EncodeJSON 将编码后的 JSON 转换为驱动可接受的参数值
	EncodeJSON(data []byte) any

	// JSONNumber 返回字段的数值表达式，字段不是数字时结果为 NULL
	JSONNumber(column, field string) string

	// JSONText 返回字段的字符串表达式，字段不是字符串时结果为 NULL
	JSONText(column, field string) string

	// JSONBool 返回判断字段等于指定布尔值的条件表达式
	JSONBool(column, field string, value bool) string

	// MergeJSON 返回将 patch 合并到 column 的表达式及其参数
	// argStart 为第一个参数的占位符编号
	MergeJSON(column string, patch map[string]json.RawMessage, argStart int) (string, []any)

	// IsUniqueViolation 判断错误是否为唯一约束冲突
	IsUniqueViolation(err error) bool

	// AutoMigrate 自动创建数据库 Schema
	AutoMigrate(db *sql.DB) error
}

// pgPlaceholderRe 匹配 PostgreSQL 风格占位符 $1, $2, ...
var pgPlaceholderRe = regexp.MustCompile(`\$(\d+)`)

// pgCastRe 匹配 PostgreSQL 类型转换 ::type
var pgCastRe = regexp.MustCompile(`::(\w+)`)

// RebindToPositional 保持 $N 占位符不变（PostgreSQL 专用）
func RebindToPositional(query string) string {
	return query
}

// RebindToQuestion 将 $N 占位符转换为 ? （SQLite 专用）
func RebindToQuestion(query string) string {
	return pgPlaceholderRe.ReplaceAllString(query, "?")
}

// StripPgCasts 去除 PostgreSQL 类型转换 (::varchar, ::text 等)
func StripPgCasts(query string) string {
	return pgCastRe.ReplaceAllString(query, "")
}

// BuildDynamicQuery 构建动态 WHERE 条件的查询
// 根据方言自动调整占位符
func BuildDynamicQuery(d Dialect, baseQuery string, conditions []string, suffix string) string {
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	if suffix != "" {
		baseQuery += " " + suffix
	}
	return d.Rebind(baseQuery)
}

// Placeholder 返回第 n 个 PostgreSQL 风格占位符
func Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
