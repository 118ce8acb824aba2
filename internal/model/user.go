package model

import (
	"errors"
	"time"
)

// UserModel 用户数据模型
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	Role      Role      `gorm:"type:varchar(32);not null;default:'contributor';check:role IN ('admin','lead','finance','contributor','read-only')" json:"role"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// Validate 验证用户模型
func (um *UserModel) Validate() error {
	if um.Name == "" {
		return errors.New("user name is required")
	}
	if um.Email == "" {
		return errors.New("user email is required")
	}
	if !um.Role.Valid() {
		return errors.New("user role is invalid")
	}
	return nil
}
