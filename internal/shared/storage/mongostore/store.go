// Package mongostore 实现基于 MongoDB 的 PersistentStore
//
// 使用 mongo-go-driver v2。用户通过 bson tag 序列化，商品与订单按调用方提交的文档原样保存。
// 所有 Collection 名称和索引在 ensureIndexes 中统一管理。
package mongostore

import (
	"context"
	"fmt"
	"log"
	"time"

	"trenzy-shop/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection 名称常量
const (
	ColUsers    = "users"
	ColProducts = "products"
	ColOrders   = "orders"
)

// Store 实现 storage.PersistentStore 接口的 MongoDB 驱动
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	observer storage.QueryObserver
}

var _ storage.PersistentStore = (*Store)(nil)

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "trenzy"
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	// 验证连接
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, db: db}

	// users.email 唯一索引是重复注册的唯一判据，创建失败时拒绝启动
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure indexes failed: %w", err)
	}

	return s, nil
}

// SetObserver 注册查询观察者
func (s *Store) SetObserver(obs storage.QueryObserver) {
	s.observer = obs
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// observe 上报一次存储操作
func (s *Store) observe(operation, collection string, start time.Time, err error) {
	if s.observer != nil {
		s.observer(operation, collection, time.Since(start), err)
	}
}

// ensureIndexes 创建所有必要的索引
// 唯一索引失败返回错误，普通查询索引失败只记录告警
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		// products
		{ColProducts, bson.D{{Key: "category", Value: 1}}, false},
		{ColProducts, bson.D{{Key: "price", Value: 1}}, false},

		// orders
		{ColOrders, bson.D{{Key: "status", Value: 1}}, false},
		{ColOrders, bson.D{{Key: "email", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			if i.unique {
				return fmt.Errorf("create unique index on %s: %w", i.col, err)
			}
			log.Printf("WARNING: mongostore: create index on %s failed: %v", i.col, err)
		}
	}

	return nil
}
