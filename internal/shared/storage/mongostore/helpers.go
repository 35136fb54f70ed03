package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// wrapError 将 MongoDB 错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrDuplicate
	case mongo.IsTimeout(err):
		return fmt.Errorf("%w: %w", storage.ErrTimeout, err)
	case mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return err
}

// findOne 查找单个文档并解码到 result
// 文档不存在时返回 (nil, nil)，与 SQL 实现的 sql.ErrNoRows → (nil, nil) 行为一致
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &result, nil
}

// insertOne 插入单个文档
func insertOne(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err)
}

// ============================================================================
// 文档操作（products / orders 共用）
// ============================================================================

// insertDoc 插入文档，_id 始终由存储层分配
func (s *Store) insertDoc(ctx context.Context, name string, doc model.Document) (id string, err error) {
	defer func(start time.Time) { s.observe("insert", name, start, err) }(time.Now())

	oid := bson.NewObjectID()
	record := bson.M(doc.WithoutID())
	record[model.FieldID] = oid
	if err := insertOne(ctx, s.col(name), record); err != nil {
		return "", err
	}
	return oid.Hex(), nil
}

// listDocs 按过滤条件查询，按 _id 升序返回
func (s *Store) listDocs(ctx context.Context, name string, filter storage.Filter) (docs []model.Document, err error) {
	defer func(start time.Time) { s.observe("find", name, start, err) }(time.Now())

	query, err := filterToBSON(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: model.FieldID, Value: 1}})
	cursor, err := s.col(name).Find(ctx, query, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	docs = []model.Document{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err)
	}
	return docs, nil
}

// getDoc 按 _id 查询
func (s *Store) getDoc(ctx context.Context, name, id string) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one", name, start, err) }(time.Now())

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var raw bson.M
	if err := s.col(name).FindOne(ctx, bson.D{{Key: model.FieldID, Value: oid}}).Decode(&raw); err != nil {
		return nil, wrapError(err)
	}
	return toDocument(raw), nil
}

// updateDoc $set 更新并返回更新后的文档
func (s *Store) updateDoc(ctx context.Context, name, id string, patch model.Document) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one_and_update", name, start, err) }(time.Now())

	set := bson.D{}
	for k, v := range patch {
		if k == model.FieldID {
			continue
		}
		if !storage.ValidField(k) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidField, k)
		}
		set = append(set, bson.E{Key: k, Value: v})
	}
	if len(set) == 0 {
		return s.getDoc(ctx, name, id)
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err = s.col(name).FindOneAndUpdate(ctx,
		bson.D{{Key: model.FieldID, Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&raw)
	if err != nil {
		return nil, wrapError(err)
	}
	return toDocument(raw), nil
}

// deleteDoc 删除并返回被删除的文档
func (s *Store) deleteDoc(ctx context.Context, name, id string) (doc model.Document, err error) {
	defer func(start time.Time) { s.observe("find_one_and_delete", name, start, err) }(time.Now())

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var raw bson.M
	if err := s.col(name).FindOneAndDelete(ctx, bson.D{{Key: model.FieldID, Value: oid}}).Decode(&raw); err != nil {
		return nil, wrapError(err)
	}
	return toDocument(raw), nil
}

// toDocument 将 BSON 值转换为 JSON 友好的 Go 值
func toDocument(raw bson.M) model.Document {
	doc := make(model.Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch x := v.(type) {
	case bson.ObjectID:
		return x.Hex()
	case bson.DateTime:
		return x.Time().UTC()
	case bson.M:
		return map[string]any(toDocument(x))
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

// ============================================================================
// 用户记录
// ============================================================================

// userRecord users 集合中的文档，_id 为原生 ObjectID
type userRecord struct {
	ID           bson.ObjectID  `bson:"_id"`
	Name         string         `bson:"name"`
	Email        string         `bson:"email"`
	PasswordHash string         `bson:"password"`
	Role         model.UserRole `bson:"role,omitempty"`
	CreatedAt    time.Time      `bson:"created_at,omitempty"`
}

func newUserRecord(u *model.User) (*userRecord, error) {
	oid, err := bson.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, fmt.Errorf("mongostore: invalid user id %q: %w", u.ID, err)
	}
	return &userRecord{
		ID:           oid,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}, nil
}

// toModel 缺少 role 的历史用户按普通用户处理
func (r *userRecord) toModel() *model.User {
	role := r.Role
	if role == "" {
		role = model.UserRoleUser
	}
	return &model.User{
		ID:           r.ID.Hex(),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         role,
		CreatedAt:    r.CreatedAt,
	}
}
