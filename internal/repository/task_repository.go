package repository

import (
	"context"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// TaskRepository 项目任务仓储接口
type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(ctx context.Context, task *model.TaskModel) error
	Save(ctx context.Context, task *model.TaskModel) error
	FindByID(ctx context.Context, id int64) (*model.TaskModel, error)
	FindByProject(ctx context.Context, projectID int64) ([]*model.TaskModel, error)
	DeleteByProject(ctx context.Context, projectID int64) error
	Delete(ctx context.Context, id int64) error
}

// taskRepository 任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

// Create 创建任务
func (r *taskRepository) Create(ctx context.Context, task *model.TaskModel) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Save 保存任务
func (r *taskRepository) Save(ctx context.Context, task *model.TaskModel) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(ctx context.Context, id int64) (*model.TaskModel, error) {
	var task model.TaskModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByProject 查找项目下的任务
func (r *taskRepository) FindByProject(ctx context.Context, projectID int64) ([]*model.TaskModel, error) {
	var tasks []*model.TaskModel
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// DeleteByProject 删除项目下的全部任务
func (r *taskRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.TaskModel{}).Error
}

// Delete 删除任务
func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TaskModel{}).Error
}
