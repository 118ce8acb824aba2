package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *model.UserModel) error
	Save(ctx context.Context, user *model.UserModel) error
	FindByID(ctx context.Context, id int64) (*model.UserModel, error)
	FindByEmail(ctx context.Context, email string) (*model.UserModel, error)
	FindAll(ctx context.Context) ([]*model.UserModel, error)
	Delete(ctx context.Context, id int64) error
}

// userRepository 用户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.UserModel) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Save 保存用户(全部字段)
func (r *userRepository) Save(ctx context.Context, user *model.UserModel) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindByID 根据 ID 查找用户
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	var user model.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 查找所有用户
func (r *userRepository) FindAll(ctx context.Context) ([]*model.UserModel, error) {
	var users []*model.UserModel
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// Delete 删除用户
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.UserModel{}).Error
}
