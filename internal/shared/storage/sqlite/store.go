// Package sqlite SQLite 文档存储
//
// repository.Store + driver/sqlite.Dialect 的组合，启动时自动建表。
// 适合本地开发与单机部署。
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlitedriver "trenzy-shop/internal/shared/storage/driver/sqlite"
	"trenzy-shop/internal/shared/storage/repository"
)

// Store SQLite 存储
type Store = repository.Store

// NewStore 打开 SQLite 数据库并确保表结构存在
// 数据库文件所在目录不存在时自动创建
func NewStore(dsn string) (*Store, error) {
	if dir := fileDir(dsn); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create data dir: %w", err)
		}
	}
	db, err := sqlitedriver.Open(dsn)
	if err != nil {
		return nil, err
	}
	store, err := NewStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStoreFromDB 从已有的 *sql.DB 创建 SQLite 存储
func NewStoreFromDB(db *sql.DB) (*Store, error) {
	dialect := sqlitedriver.NewDialect()
	if err := dialect.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("sqlite: migrate failed: %w", err)
	}
	return repository.NewStore(db, dialect), nil
}

// fileDir 从 DSN 中提取数据库文件目录，内存库返回空
func fileDir(dsn string) string {
	if strings.Contains(dsn, ":memory:") {
		return ""
	}
	path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "file:")
	path, _, _ = strings.Cut(path, "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return ""
	}
	return dir
}
