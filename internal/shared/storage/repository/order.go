package repository

import (
	"context"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
)

// ============================================================================
// OrderStore
// ============================================================================

func (s *Store) CreateOrder(ctx context.Context, doc model.Document) (string, error) {
	return s.insertDoc(ctx, TableOrders, doc)
}

func (s *Store) ListOrders(ctx context.Context, filter storage.Filter) ([]model.Document, error) {
	return s.listDocs(ctx, TableOrders, filter)
}

func (s *Store) GetOrder(ctx context.Context, id string) (model.Document, error) {
	return s.getDoc(ctx, TableOrders, id)
}

// UpdateOrderStatus 单条 UPDATE ... RETURNING，重复调用结果相同
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Document, error) {
	return s.updateDoc(ctx, TableOrders, id, model.Document{model.OrderFieldStatus: string(status)})
}

func (s *Store) DeleteOrder(ctx context.Context, id string) (model.Document, error) {
	return s.deleteDoc(ctx, TableOrders, id)
}
