// Package sqlite SQLite 数据库驱动
//
// 提供 SQLite 连接管理、方言实现和自动 Schema 迁移。
// 适用于开发、测试和轻量级部署场景。
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"trenzy-shop/internal/shared/storage/dbutil"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect SQLite 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverSQLite
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.StripPgCasts(dbutil.RebindToQuestion(query))
}

// EncodeJSON SQLite 的 JSON 函数不接受 BLOB，必须以 TEXT 写入
func (d *Dialect) EncodeJSON(data []byte) any {
	return string(data)
}

func (d *Dialect) JSONNumber(column, field string) string {
	path := jsonPath(field)
	return fmt.Sprintf("(CASE WHEN json_type(%s, %s) IN ('integer', 'real') THEN json_extract(%s, %s) END)",
		column, path, column, path)
}

func (d *Dialect) JSONText(column, field string) string {
	path := jsonPath(field)
	return fmt.Sprintf("(CASE WHEN json_type(%s, %s) = 'text' THEN json_extract(%s, %s) END)",
		column, path, column, path)
}

func (d *Dialect) JSONBool(column, field string, value bool) string {
	return fmt.Sprintf("json_type(%s, %s) = '%t'", column, jsonPath(field), value)
}

// MergeJSON 生成 json_set(doc, '$.a', json(?), '$.b', json(?)) 表达式
func (d *Dialect) MergeJSON(column string, patch map[string]json.RawMessage, argStart int) (string, []any) {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("json_set(")
	sb.WriteString(column)
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		fmt.Fprintf(&sb, ", %s, json(%s)", jsonPath(k), dbutil.Placeholder(argStart+i))
		args = append(args, string(patch[k]))
	}
	sb.WriteString(")")
	return sb.String(), args
}

func (d *Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func (d *Dialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// jsonPath 字段名已由调用方通过 storage.ValidField 校验
func jsonPath(field string) string {
	return "'$." + field + "'"
}

// Open 创建 SQLite 数据库连接
// dsn 示例: "file:shop.db?cache=shared&mode=rwc" 或 ":memory:"
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// 内存库每个连接都是独立的数据库，只能保留一个连接
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// SQLite 优化设置
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return db, nil
}

// NewDialect 创建 SQLite 方言
func NewDialect() *Dialect {
	return &Dialect{}
}

// schema SQLite 完整建表语句
const schema = `
-- users
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(24) PRIMARY KEY,
    name VARCHAR(200),
    email VARCHAR(320) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role VARCHAR(32) DEFAULT 'user',
    created_at DATETIME DEFAULT (datetime('now'))
);

-- products
CREATE TABLE IF NOT EXISTS products (
    id VARCHAR(24) PRIMARY KEY,
    doc TEXT NOT NULL,
    created_at DATETIME DEFAULT (datetime('now'))
);

-- orders
CREATE TABLE IF NOT EXISTS orders (
    id VARCHAR(24) PRIMARY KEY,
    doc TEXT NOT NULL,
    created_at DATETIME DEFAULT (datetime('now'))
);
`
