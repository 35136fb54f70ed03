package repository

import (
	"context"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"
)

// ============================================================================
// ProductStore
// ============================================================================

func (s *Store) CreateProduct(ctx context.Context, doc model.Document) (string, error) {
	return s.insertDoc(ctx, TableProducts, doc)
}

func (s *Store) ListProducts(ctx context.Context, filter storage.Filter) ([]model.Document, error) {
	return s.listDocs(ctx, TableProducts, filter)
}

func (s *Store) GetProduct(ctx context.Context, id string) (model.Document, error) {
	return s.getDoc(ctx, TableProducts, id)
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.Document) (model.Document, error) {
	return s.updateDoc(ctx, TableProducts, id, patch)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) (model.Document, error) {
	return s.deleteDoc(ctx, TableProducts, id)
}
