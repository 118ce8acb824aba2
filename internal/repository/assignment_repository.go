package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// AssignmentRepository 项目成员仓储接口
type AssignmentRepository interface {
	WithTx(tx *gorm.DB) AssignmentRepository
	Create(ctx context.Context, assignment *model.AssignmentModel) error
	Exists(ctx context.Context, projectID, userID int64) (bool, error)
	FindByProject(ctx context.Context, projectID int64) ([]*model.AssignmentModel, error)
	Delete(ctx context.Context, projectID, userID int64) (int64, error)
	DeleteByProject(ctx context.Context, projectID int64) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository 创建项目成员仓储
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: tx}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.AssignmentModel) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Exists 判断用户是否被分配到项目
func (r *assignmentRepository) Exists(ctx context.Context, projectID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AssignmentModel{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *assignmentRepository) FindByProject(ctx context.Context, projectID int64) ([]*model.AssignmentModel, error) {
	var assignments []*model.AssignmentModel
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("user_id ASC").Find(&assignments).Error
	return assignments, err
}

// Delete 删除一条分配,返回删除行数
func (r *assignmentRepository) Delete(ctx context.Context, projectID, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&model.AssignmentModel{})
	return result.RowsAffected, result.Error
}

func (r *assignmentRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.AssignmentModel{}).Error
}

func (r *assignmentRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AssignmentModel{}).Error
}
