// Package repository 数据库无关的文档存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
// 商品与订单以 JSON 形式保存在 doc 列中，过滤条件编译为方言相关的 JSON 表达式。
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storage/dbutil"
)

// 表名常量
const (
	TableUsers    = "users"
	TableProducts = "products"
	TableOrders   = "orders"
)

// Store 通用存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db       *sql.DB
	dialect  dbutil.Dialect
	observer storage.QueryObserver
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// SetObserver 注册查询观察者
func (s *Store) SetObserver(obs storage.QueryObserver) {
	s.observer = obs
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// observe 上报一次存储操作
func (s *Store) observe(operation, table string, start time.Time, err error) {
	if s.observer != nil {
		s.observer(operation, table, time.Since(start), err)
	}
}

// wrapError 将数据库错误转换为领域错误
func (s *Store) wrapError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotFound
	case s.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%s %s: %w", operation, table, storage.ErrDuplicate)
	}
	return fmt.Errorf("%s %s: %w", operation, table, err)
}
