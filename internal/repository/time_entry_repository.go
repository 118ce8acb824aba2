package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"gorm.io/gorm"
)

// TimeEntryRepository 工时条目仓储接口
//
// 所有状态变更都是带前置状态和版本号条件的更新,
// 返回 false 表示条目已被并发修改。
type TimeEntryRepository interface {
	WithTx(tx *gorm.DB) TimeEntryRepository
	Create(ctx context.Context, entry *model.TimeEntryModel) error
	FindByID(ctx context.Context, id int64) (*model.TimeEntryModel, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*model.TimeEntryModel, error)
	FindByBatchID(ctx context.Context, batchID string) ([]*model.TimeEntryModel, error)
	FindByUserInRange(ctx context.Context, userID int64, from, to time.Time, state *statemachine.State) ([]*model.TimeEntryModel, error)
	FindByFilter(ctx context.Context, filter *TimeEntryFilter) ([]*model.TimeEntryModel, int64, error)
	FindSubmitted(ctx context.Context, excludeUserID int64) ([]*model.TimeEntryModel, error)
	UpdateDraft(ctx context.Context, entry *model.TimeEntryModel) (bool, error)
	Transition(ctx context.Context, t *Transition) (bool, error)
	DeleteDraft(ctx context.Context, id int64, version int64) (bool, error)
	CountByProject(ctx context.Context, projectID int64) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	CountByState(ctx context.Context) (map[statemachine.State]int64, error)
	ClearTask(ctx context.Context, taskID int64, now time.Time) error
}

// TimeEntryFilter 工时条目查询过滤器
type TimeEntryFilter struct {
	UserID    *int64
	VisibleTo *int64 // 仅本人条目及其担任指定审批人的项目的条目
	ProjectID *int64
	State     *statemachine.State
	BatchID   *string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string // 调用方负责校验
	Order     string
}

// Transition 一次条件状态变更
type Transition struct {
	ID         int64
	From       statemachine.State
	Version    int64
	To         statemachine.State
	BatchID    *string // 非空时写入新的批次号
	ClearBatch bool    // 为 true 时清空批次号
	At         time.Time
}

type timeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository 创建工时条目仓储
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) WithTx(tx *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: tx}
}

// Create 创建工时条目
func (r *timeEntryRepository) Create(ctx context.Context, entry *model.TimeEntryModel) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID 根据 ID 查找工时条目
func (r *timeEntryRepository) FindByID(ctx context.Context, id int64) (*model.TimeEntryModel, error) {
	var entry model.TimeEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByIDs 批量查找,按 ID 升序
func (r *timeEntryRepository) FindByIDs(ctx context.Context, ids []int64) ([]*model.TimeEntryModel, error) {
	var entries []*model.TimeEntryModel
	if len(ids) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&entries).Error
	return entries, err
}

// FindByBatchID 查找同一提交批次的条目
func (r *timeEntryRepository) FindByBatchID(ctx context.Context, batchID string) ([]*model.TimeEntryModel, error) {
	var entries []*model.TimeEntryModel
	err := r.db.WithContext(ctx).Where("submit_batch_id = ?", batchID).Order("id ASC").Find(&entries).Error
	return entries, err
}

// FindByUserInRange 查找用户在日期区间 [from, to] 内的条目
func (r *timeEntryRepository) FindByUserInRange(ctx context.Context, userID int64, from, to time.Time, state *statemachine.State) ([]*model.TimeEntryModel, error) {
	var entries []*model.TimeEntryModel
	query := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date <= ?", userID, from, to)
	if state != nil {
		query = query.Where("state = ?", *state)
	}
	err := query.Order("work_date ASC, id ASC").Find(&entries).Error
	return entries, err
}

// FindByFilter 分页查询
func (r *timeEntryRepository) FindByFilter(ctx context.Context, filter *TimeEntryFilter) ([]*model.TimeEntryModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.TimeEntryModel{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.VisibleTo != nil {
		approved := r.db.WithContext(ctx).Model(&model.ProjectModel{}).
			Select("id").
			Where("approver_user_id = ?", *filter.VisibleTo)
		query = query.Where("(user_id = ? OR project_id IN (?))", *filter.VisibleTo, approved)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.BatchID != nil {
		query = query.Where("submit_batch_id = ?", *filter.BatchID)
	}
	if filter.From != nil {
		query = query.Where("work_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("work_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "work_date"
	}
	order := strings.ToUpper(filter.Order)
	if order != "ASC" {
		order = "DESC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order)).Order("id " + order)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var entries []*model.TimeEntryModel
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query entries: %w", err)
	}
	return entries, total, nil
}

// FindSubmitted 查找待审批条目,排除指定作者
func (r *timeEntryRepository) FindSubmitted(ctx context.Context, excludeUserID int64) ([]*model.TimeEntryModel, error) {
	var entries []*model.TimeEntryModel
	err := r.db.WithContext(ctx).
		Where("state = ? AND user_id <> ?", statemachine.Submitted, excludeUserID).
		Order("submit_batch_id ASC, work_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// UpdateDraft 更新草稿字段,要求条目仍为草稿且版本号未变
func (r *timeEntryRepository) UpdateDraft(ctx context.Context, entry *model.TimeEntryModel) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).
		Where("id = ? AND state = ? AND version = ?", entry.ID, statemachine.Draft, entry.Version).
		Updates(map[string]interface{}{
			"project_id": entry.ProjectID,
			"task_id":    entry.TaskID,
			"work_date":  entry.WorkDate,
			"hours":      entry.Hours,
			"billable":   entry.Billable,
			"notes":      entry.Notes,
			"source":     entry.Source,
			"version":    gorm.Expr("version + 1"),
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Transition 条件状态变更
func (r *timeEntryRepository) Transition(ctx context.Context, t *Transition) (bool, error) {
	updates := map[string]interface{}{
		"state":      t.To,
		"version":    gorm.Expr("version + 1"),
		"updated_at": t.At,
	}
	switch {
	case t.BatchID != nil:
		updates["submit_batch_id"] = *t.BatchID
	case t.ClearBatch:
		updates["submit_batch_id"] = nil
	}

	result := r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).
		Where("id = ? AND state = ? AND version = ?", t.ID, t.From, t.Version).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteDraft 物理删除草稿
func (r *timeEntryRepository) DeleteDraft(ctx context.Context, id int64, version int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND state = ? AND version = ?", id, statemachine.Draft, version).
		Delete(&model.TimeEntryModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *timeEntryRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

func (r *timeEntryRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByState 按状态统计条目数
func (r *timeEntryRepository) CountByState(ctx context.Context) (map[statemachine.State]int64, error) {
	var rows []struct {
		State statemachine.State
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[statemachine.State]int64, len(statemachine.States))
	for _, s := range statemachine.States {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}

// ClearTask 任务删除后保留条目,清空任务引用
func (r *timeEntryRepository) ClearTask(ctx context.Context, taskID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.TimeEntryModel{}).
		Where("task_id = ?", taskID).
		Updates(map[string]interface{}{
			"task_id":    nil,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		}).Error
}
