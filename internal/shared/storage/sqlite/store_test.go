package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"trenzy-shop/internal/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDir(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{":memory:", ""},
		{"file::memory:?cache=shared", ""},
		{"file:data/trenzy.db?cache=shared&mode=rwc", "data"},
		{"sqlite:/var/lib/shop/shop.db", "/var/lib/shop"},
		{"shop.db", ""},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, fileDir(tt.dsn))
		})
	}
}

func TestNewStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store, err := NewStore("file:" + filepath.Join(dir, "shop.db") + "?mode=rwc")
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dir)
	require.NoError(t, err)

	id, err := store.CreateProduct(context.Background(), model.Document{"name": "tee"})
	require.NoError(t, err)
	doc, err := store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "tee", doc["name"])
}
