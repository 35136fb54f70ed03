package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trenzy-shop/internal/apiserver/httpx"
	"trenzy-shop/internal/shared/model"
	"trenzy-shop/internal/shared/storage"

	"golang.org/x/crypto/bcrypt"
)

// Service 凭证管理：注册与登录
type Service struct {
	store storage.UserStore
	cfg   Config
	now   func() time.Time
}

// NewService 创建凭证服务
func NewService(store storage.UserStore, cfg Config) *Service {
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// Register 注册新用户
// 邮箱唯一性由存储层唯一索引保证，冲突返回 DuplicateUser
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, httpx.InvalidRequest("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           model.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, httpx.DuplicateUser()
		}
		return nil, err
	}
	return user, nil
}

// Login 校验凭证并签发令牌
// 用户不存在与密码错误返回同一个 InvalidCredentials
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return "", nil, httpx.InvalidCredentials()
	}

	token, err := GenerateToken(s.cfg, user.ID, user.Email, user.Name, string(user.Role), s.now())
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}
