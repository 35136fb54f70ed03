// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（默认）、repository/（SQLite / PostgreSQL）
//   - 启动时构造一次，通过构造函数注入到各 Handler
package storage

import (
	"context"
	"time"

	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storagetypes"
)

// Filter 查询过滤条件（类型重导出，避免循环导入）
type Filter = storagetypes.Filter

// UserStore 用户存储接口
type UserStore interface {
	// CreateUser 邮箱冲突时返回 ErrDuplicate（由唯一索引保证）
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail 用户不存在时返回 (nil, nil)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProductStore 商品存储接口
type ProductStore interface {
	CreateProduct(ctx context.Context, doc model.Document) (string, error)
	ListProducts(ctx context.Context, filter Filter) ([]model.Document, error)
	GetProduct(ctx context.Context, id string) (model.Document, error)
	UpdateProduct(ctx context.Context, id string, patch model.Document) (model.Document, error)
	DeleteProduct(ctx context.Context, id string) (model.Document, error)
}

// OrderStore 订单存储接口
type OrderStore interface {
	CreateOrder(ctx context.Context, doc model.Document) (string, error)
	ListOrders(ctx context.Context, filter Filter) ([]model.Document, error)
	GetOrder(ctx context.Context, id string) (model.Document, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Document, error)
	DeleteOrder(ctx context.Context, id string) (model.Document, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	ProductStore
	OrderStore
	Close() error
}

// QueryObserver 存储操作观察者，用于记录指标和慢查询日志
type QueryObserver func(operation, collection string, duration time.Duration, err error)

// Observable 支持注册 QueryObserver 的存储实现
type Observable interface {
	SetObserver(obs QueryObserver)
}
