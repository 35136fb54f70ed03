package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storage/dbutil"
	"trenzy-shop/internal/shared/storagetypes"
)

// ============================================================================
// 通用文档操作（products / orders 共用）
// ============================================================================

// insertDoc 插入文档，返回分配的 _id
func (s *Store) insertDoc(ctx context.Context, table string, doc model.Document) (id string, err error) {
	defer func(start time.Time) { s.observe("insert", table, start, err) }(time.Now())

	data, err := json.Marshal(doc.WithoutID())
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", table, err)
	}

	id = model.NewID()
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO `+table+` (id, doc, created_at) VALUES ($1, $2, $3)`),
		id, s.dialect.EncodeJSON(data), time.Now().UTC(),
	)
	if err != nil {
		return "", s.wrapError("insert", table, err)
	}
	return id, nil
}

// listDocs 按过滤条件查询，按 _id 升序返回
func (s *Store) listDocs(ctx context.Context, table string, filter storage.Filter) (docs []model.Document, err error) {
	defer func(start time.Time) { s.observe("find", table, start, err) }(time.Now())

	conds, args, err := s.compileFilter(filter)
	if err != nil {
		return nil, err
	}
	query := dbutil.BuildDynamicQuery(s.dialect, `SELECT id, doc FROM `+table, conds, "ORDER BY id")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.wrapError("find", table, err)
	}
	defer rows.Close()

	docs = []model.Document{}
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapError("find", table, err)
	}
	return docs, nil
}

// getDoc 按 _id 查询
func (s *Store) getDoc(ctx context.Context, table, id string) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one", table, start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, doc FROM `+table+` WHERE id = $1`), id)
	doc, err = scanDoc(row)
	if err != nil {
		return nil, s.wrapError("find_one", table, err)
	}
	return doc, nil
}

// updateDoc 顶层字段覆盖更新（等价于 $set），返回更新后的文档
func (s *Store) updateDoc(ctx context.Context, table, id string, patch model.Document) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one_and_update", table, start, err) }(time.Now())

	encoded, err := encodePatch(patch)
	if err != nil {
		return nil, err
	}
	if len(encoded) == 0 {
		return s.getDoc(ctx, table, id)
	}

	expr, args := s.dialect.MergeJSON("doc", encoded, 1)
	query := fmt.Sprintf(`UPDATE %s SET doc = %s WHERE id = %s RETURNING id, doc`,
		table, expr, dbutil.Placeholder(len(args)+1))
	args = append(args, id)

	doc, err = scanDoc(s.db.QueryRowContext(ctx, s.rebind(query), args...))
	if err != nil {
		return nil, s.wrapError("find_one_and_update", table, err)
	}
	return doc, nil
}

// deleteDoc 删除并返回被删除的文档
func (s *Store) deleteDoc(ctx context.Context, table, id string) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one_and_delete", table, start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE id = $1 RETURNING id, doc`), id)
	doc, err = scanDoc(row)
	if err != nil {
		return nil, s.wrapError("find_one_and_delete", table, err)
	}
	return doc, nil
}

// ============================================================================
// 辅助函数
// ============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDoc 读取 (id, doc) 并将 id 回填为 _id
func scanDoc(row rowScanner) (model.Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	doc := model.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[model.FieldID] = id
	return doc, nil
}

// encodePatch 校验字段名并逐字段编码，_id 不可修改
func encodePatch(patch model.Document) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		if k == model.FieldID {
			continue
		}
		if !storage.ValidField(k) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidField, k)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		out[k] = data
	}
	return out, nil
}

// sqlOperators 比较运算符到 SQL 的映射
var sqlOperators = map[storagetypes.Operator]string{
	storagetypes.OpEq:  "=",
	storagetypes.OpLt:  "<",
	storagetypes.OpLte: "<=",
	storagetypes.OpGt:  ">",
	storagetypes.OpGte: ">=",
}

// compileFilter 将 Filter 编译为 WHERE 条件（PG 风格占位符）
func (s *Store) compileFilter(filter storage.Filter) ([]string, []any, error) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return dbutil.Placeholder(len(args))
	}

	for _, c := range filter.Conditions {
		if !storage.ValidField(c.Field) {
			return nil, nil, fmt.Errorf("%w: %q", storage.ErrInvalidField, c.Field)
		}

		switch {
		case c.Op == storagetypes.OpRange:
			num := s.dialect.JSONNumber("doc", c.Field)
			conds = append(conds, fmt.Sprintf("%s >= %s AND %s <= %s", num, next(c.Min), num, next(c.Max)))

		case c.Op.IsComparison():
			v, ok := numeric(c.Value)
			if !ok {
				return nil, nil, fmt.Errorf("filter %s: %s requires a number, got %T", c.Field, c.Op, c.Value)
			}
			conds = append(conds, fmt.Sprintf("%s %s %s", s.dialect.JSONNumber("doc", c.Field), sqlOperators[c.Op], next(v)))

		case c.Op == storagetypes.OpEq:
			cond, err := s.compileEq(c, next)
			if err != nil {
				return nil, nil, err
			}
			conds = append(conds, cond)

		default:
			return nil, nil, fmt.Errorf("filter %s: unsupported operator %q", c.Field, c.Op)
		}
	}

	return conds, args, nil
}

func (s *Store) compileEq(c storagetypes.Condition, next func(any) string) (string, error) {
	if c.Field == model.FieldID {
		id, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("filter %s: expects a string", c.Field)
		}
		return "id = " + next(id), nil
	}

	switch v := c.Value.(type) {
	case bool:
		return s.dialect.JSONBool("doc", c.Field, v), nil
	case string:
		return s.dialect.JSONText("doc", c.Field) + " = " + next(v), nil
	}
	if v, ok := numeric(c.Value); ok {
		return s.dialect.JSONNumber("doc", c.Field) + " = " + next(v), nil
	}
	return "", fmt.Errorf("filter %s: unsupported value type %T", c.Field, c.Value)
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
