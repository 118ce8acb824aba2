package repository

import (
	"context"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	WithTx(tx *gorm.DB) ProjectRepository
	Create(ctx context.Context, project *model.ProjectModel) error
	Save(ctx context.Context, project *model.ProjectModel) error
	FindByID(ctx context.Context, id int64) (*model.ProjectModel, error)
	FindAll(ctx context.Context, filter *ProjectFilter) ([]*model.ProjectModel, error)
	CountByClient(ctx context.Context, clientID int64) (int64, error)
	ClearApprover(ctx context.Context, userID int64, now time.Time) error
	Delete(ctx context.Context, id int64) error
}

// ProjectFilter 项目查询过滤器
type ProjectFilter struct {
	ClientID *int64
	Status   *model.ProjectStatus
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx}
}

func (r *projectRepository) Create(ctx context.Context, project *model.ProjectModel) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) Save(ctx context.Context, project *model.ProjectModel) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id int64) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll 根据过滤器查找项目
func (r *projectRepository) FindAll(ctx context.Context, filter *ProjectFilter) ([]*model.ProjectModel, error) {
	var projects []*model.ProjectModel
	query := r.db.WithContext(ctx).Model(&model.ProjectModel{})
	if filter != nil {
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
	}
	err := query.Order("code ASC, id ASC").Find(&projects).Error
	return projects, err
}

// CountByClient 统计客户下的项目数
func (r *projectRepository) CountByClient(ctx context.Context, clientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProjectModel{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

// ClearApprover 清除指向该用户的项目审批人
func (r *projectRepository) ClearApprover(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("approver_user_id = ?", userID).
		Updates(map[string]interface{}{"approver_user_id": nil, "updated_at": now}).Error
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProjectModel{}).Error
}
