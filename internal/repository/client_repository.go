package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// ClientRepository 客户仓储接口
type ClientRepository interface {
	WithTx(tx *gorm.DB) ClientRepository
	Create(ctx context.Context, client *model.ClientModel) error
	Save(ctx context.Context, client *model.ClientModel) error
	FindByID(ctx context.Context, id int64) (*model.ClientModel, error)
	FindAll(ctx context.Context) ([]*model.ClientModel, error)
	Delete(ctx context.Context, id int64) error
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓储
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) WithTx(tx *gorm.DB) ClientRepository {
	return &clientRepository{db: tx}
}

func (r *clientRepository) Create(ctx context.Context, client *model.ClientModel) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Save(ctx context.Context, client *model.ClientModel) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id int64) (*model.ClientModel, error) {
	var client model.ClientModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindAll(ctx context.Context) ([]*model.ClientModel, error) {
	var clients []*model.ClientModel
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ClientModel{}).Error
}
