package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// StateHistoryRepository 状态历史仓储接口
type StateHistoryRepository interface {
	WithTx(tx *gorm.DB) StateHistoryRepository
	Save(ctx context.Context, history *model.StateHistoryModel) error
	FindByEntryID(ctx context.Context, entryID int64) ([]*model.StateHistoryModel, error)
}

// stateHistoryRepository 状态历史仓储实现
type stateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository 创建状态历史仓储
func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

func (r *stateHistoryRepository) WithTx(tx *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: tx}
}

// Save 保存状态历史
func (r *stateHistoryRepository) Save(ctx context.Context, history *model.StateHistoryModel) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// FindByEntryID 根据条目 ID 查找状态历史
func (r *stateHistoryRepository) FindByEntryID(ctx context.Context, entryID int64) ([]*model.StateHistoryModel, error) {
	var histories []*model.StateHistoryModel
	err := r.db.WithContext(ctx).Where("time_entry_id = ?", entryID).Order("created_at ASC, id ASC").Find(&histories).Error
	return histories, err
}
