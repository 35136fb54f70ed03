package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trenzy-shop/internal/shared/model"
)

// CreateUser 创建用户，邮箱冲突由 UNIQUE 约束报告
func (s *Store) CreateUser(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { s.observe("insert", TableUsers, start, err) }(time.Now())

	if user.ID == "" {
		user.ID = model.NewID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}

	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`),
		user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	return s.wrapError("insert", TableUsers, err)
}

// GetUserByEmail 通过邮箱查找用户
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user *model.User, err error) {
	defer func(start time.Time) { s.observe("find_one", TableUsers, start, err) }(time.Now())

	u := &model.User{}
	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, email, password_hash, role, created_at
		 FROM users WHERE email = $1`), email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrapError("find_one", TableUsers, err)
	}
	return u, nil
}
