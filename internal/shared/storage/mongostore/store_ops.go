package mongostore

import (
	"context"
	"time"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

// CreateUser 邮箱冲突由 users.email 唯一索引报告
func (s *Store) CreateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { s.observe("insert", ColUsers, start, err) }(time.Now())

	if user.ID == "" {
		user.ID = model.NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	record, err := newUserRecord(user)
	if err != nil {
		return err
	}
	return insertOne(ctx, s.col(ColUsers), record)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user *model.User, err error) {
	defer func(start time.Time) { s.observe("find_one", ColUsers, start, err) }(time.Now())
	record, err := findOne[userRecord](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
	if err != nil || record == nil {
		return nil, err
	}
	return record.toModel(), nil
}

// ============================================================================
// ProductStore
// ============================================================================

func (s *Store) CreateProduct(ctx context.Context, doc model.Document) (string, error) {
	return s.insertDoc(ctx, ColProducts, doc)
}

func (s *Store) ListProducts(ctx context.Context, filter storage.Filter) ([]model.Document, error) {
	return s.listDocs(ctx, ColProducts, filter)
}

func (s *Store) GetProduct(ctx context.Context, id string) (model.Document, error) {
	return s.getDoc(ctx, ColProducts, id)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.Document) (model.Document, error) {
	return s.updateDoc(ctx, ColProducts, id, patch)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (model.Document, error) {
	return s.deleteDoc(ctx, ColProducts, id)
}

// ============================================================================
// OrderStore
// ============================================================================

func (s *Store) CreateOrder(ctx context.Context, doc model.Document) (string, error) {
	return s.insertDoc(ctx, ColOrders, doc)
}

func (s *Store) ListOrders(ctx context.Context, filter storage.Filter) ([]model.Document, error) {
	return s.listDocs(ctx, ColOrders, filter)
}

func (s *Store) GetOrder(ctx context.Context, id string) (model.Document, error) {
	return s.getDoc(ctx, ColOrders, id)
}

// UpdateOrderStatus 单次 findOneAndUpdate，重复调用结果相同
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Document, error) {
	return s.updateDoc(ctx, ColOrders, id, model.Document{model.OrderFieldStatus: string(status)})
}

func (s *Store) DeleteOrder(ctx context.Context, id string) (model.Document, error) {
	return s.deleteDoc(ctx, ColOrders, id)
}
