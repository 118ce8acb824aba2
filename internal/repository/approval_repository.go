package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// ApprovalRepository 审批记录仓储接口(只追加)
type ApprovalRepository interface {
	WithTx(tx *gorm.DB) ApprovalRepository
	Append(ctx context.Context, approval *model.ApprovalModel) error
	FindByEntryID(ctx context.Context, entryID int64) ([]*model.ApprovalModel, error)
	CountByEntryID(ctx context.Context, entryID int64) (int64, error)
	CountByApprover(ctx context.Context, userID int64) (int64, error)
}

// approvalRepository 审批记录仓储实现
type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository 创建审批记录仓储
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) WithTx(tx *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: tx}
}

// Append 追加审批记录
func (r *approvalRepository) Append(ctx context.Context, approval *model.ApprovalModel) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

// FindByEntryID 按决定时间顺序返回条目的审批记录
func (r *approvalRepository) FindByEntryID(ctx context.Context, entryID int64) ([]*model.ApprovalModel, error) {
	var approvals []*model.ApprovalModel
	err := r.db.WithContext(ctx).Where("time_entry_id = ?", entryID).Order("decided_at ASC, id ASC").Find(&approvals).Error
	return approvals, err
}

func (r *approvalRepository) CountByEntryID(ctx context.Context, entryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ApprovalModel{}).Where("time_entry_id = ?", entryID).Count(&count).Error
	return count, err
}

func (r *approvalRepository) CountByApprover(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ApprovalModel{}).Where("approver_user_id = ?", userID).Count(&count).Error
	return count, err
}
