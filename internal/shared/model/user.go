package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleUser UserRole = "user"
)

// User 用户
// MongoDB 中的文档形态见 mongostore.userRecord
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role,omitempty" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
