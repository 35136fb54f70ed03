// Package postgres PostgreSQL 数据库驱动
//
// 提供 PostgreSQL 连接管理和方言实现。
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trenzy-shop/internal/shared/storage/dbutil"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation PostgreSQL 唯一约束冲突错误码
const uniqueViolation = "23505"

// Dialect PostgreSQL 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverPostgres
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.RebindToPositional(query)
}

func (d *Dialect) EncodeJSON(data []byte) any {
	return data
}

func (d *Dialect) JSONNumber(column, field string) string {
	return fmt.Sprintf("(CASE WHEN jsonb_typeof(%s->'%s') = 'number' THEN (%s->>'%s')::double precision END)",
		column, field, column, field)
}

func (d *Dialect) JSONText(column, field string) string {
	return fmt.Sprintf("(CASE WHEN jsonb_typeof(%s->'%s') = 'string' THEN %s->>'%s' END)",
		column, field, column, field)
}

func (d *Dialect) JSONBool(column, field string, value bool) string {
	return fmt.Sprintf("%s->'%s' = '%t'::jsonb", column, field, value)
}

// MergeJSON 生成 doc || $n::jsonb，顶层键覆盖
func (d *Dialect) MergeJSON(column string, patch map[string]json.RawMessage, argStart int) (string, []any) {
	data, _ := json.Marshal(patch)
	return fmt.Sprintf("%s || %s::jsonb", column, dbutil.Placeholder(argStart)), []any{string(data)}
}

func (d *Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (d *Dialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Open 创建 PostgreSQL 数据库连接
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// NewDialect 创建 PostgreSQL 方言
func NewDialect() *Dialect {
	return &Dialect{}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(24) PRIMARY KEY,
    name VARCHAR(200),
    email VARCHAR(320) NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role VARCHAR(32) DEFAULT 'user',
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
    id VARCHAR(24) PRIMARY KEY,
    doc JSONB NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products ((doc->>'category'));

CREATE TABLE IF NOT EXISTS orders (
    id VARCHAR(24) PRIMARY KEY,
    doc JSONB NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders ((doc->>'status'));
`
