package infra

import (
	"fmt"
	"log"

	"trenzy-shop/internal/shared/storage"
	"trenzy-shop/internal/shared/storage/mongostore"
	"trenzy-shop/internal/shared/storage/postgres"
	"trenzy-shop/internal/shared/storage/sqlite"
)

// NewStorage 按驱动类型创建持久化存储
func NewStorage(driver, databaseURL, dbName string) (storage.PersistentStore, error) {
	switch driver {
	case "sqlite":
		store, err := sqlite.NewStore(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		log.Println("[Infra] Connected to SQLite")
		return store, nil

	case "postgres":
		store, err := postgres.NewStore(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Println("[Infra] Connected to PostgreSQL")
		return store, nil

	case "mongodb", "":
		store, err := mongostore.NewStore(databaseURL, dbName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		log.Printf("[Infra] Connected to MongoDB (db=%s)", dbName)
		return store, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
