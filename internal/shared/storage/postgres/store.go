// Package postgres PostgreSQL 文档存储
//
// repository.Store + driver/postgres.Dialect 的组合，启动时自动建表。
package postgres

import (
	"database/sql"
	"fmt"

	pgdriver "trenzy-shop/internal/shared/storage/driver/postgres"
	"trenzy-shop/internal/shared/storage/repository"
)

// Store PostgreSQL 存储
// 内部委托给 repository.Store
type Store = repository.Store

// NewStore 连接 PostgreSQL 并确保表结构存在
func NewStore(databaseURL string) (*Store, error) {
	db, err := pgdriver.Open(databaseURL)
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

// NewStoreFromDB 从已有的 *sql.DB 创建 PostgreSQL 存储
func NewStoreFromDB(db *sql.DB) (*Store, error) {
	dialect := pgdriver.NewDialect()
	if err := dialect.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("postgres: migrate failed: %w", err)
	}
	return repository.NewStore(db, dialect), nil
}
