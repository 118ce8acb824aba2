package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/database"
	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxEntryHours numeric(5,2) 能表示的上限(不含)
var maxEntryHours = decimal.NewFromInt(1000)

// EntryService 工时条目服务
type EntryService interface {
	Create(ctx context.Context, userID int64, in *EntryInput) (*model.TimeEntryModel, error)
	Update(ctx context.Context, userID, entryID int64, in *EntryInput) (*model.TimeEntryModel, error)
	Get(ctx context.Context, entryID int64) (*model.TimeEntryModel, error)
	Resubmit(ctx context.Context, userID, entryID int64) (*model.TimeEntryModel, error)
	Delete(ctx context.Context, userID, entryID int64) error
}

// EntryInput 创建或编辑工时条目的参数
type EntryInput struct {
	ProjectID int64             `json:"project_id" binding:"required"`
	TaskID    *int64            `json:"task_id"`
	WorkDate  string            `json:"work_date" binding:"required"` // YYYY-MM-DD
	Hours     decimal.Decimal   `json:"hours"`
	Billable  *bool             `json:"billable"`
	Notes     *string           `json:"notes"`
	Source    model.EntrySource `json:"source"`
}

type entryService struct {
	db          *gorm.DB
	lockTimeout time.Duration
	directory   DirectoryLookup
	entries     repository.TimeEntryRepository
	approvals   repository.ApprovalRepository
	history     repository.StateHistoryRepository
	auditLogSvc AuditLogService
}

// NewEntryService 创建工时条目服务
func NewEntryService(db *gorm.DB, cfg config.WorkflowConfig, directory DirectoryLookup, auditLogSvc AuditLogService) EntryService {
	return &entryService{
		db:          db,
		lockTimeout: cfg.LockTimeout,
		directory:   directory,
		entries:     repository.NewTimeEntryRepository(db),
		approvals:   repository.NewApprovalRepository(db),
		history:     repository.NewStateHistoryRepository(db),
		auditLogSvc: auditLogSvc,
	}
}

// entryFields 已校验的字段值
type entryFields struct {
	workDate time.Time
	hours    decimal.Decimal
	notes    *string
	source   model.EntrySource
}

// validateFields 校验与引用无关的字段
func validateFields(in *EntryInput) (*entryFields, error) {
	if in.ProjectID == 0 {
		return nil, apperror.Validation("project_id", "is required")
	}
	workDate, err := ParseDate("work_date", in.WorkDate)
	if err != nil {
		return nil, err
	}
	hours, err := normalizeHours(in.Hours)
	if err != nil {
		return nil, err
	}
	source := in.Source
	if source == "" {
		source = model.SourceManual
	}
	if !source.Valid() {
		return nil, apperror.Validation("source", "unknown source %q", source)
	}
	return &entryFields{workDate: workDate, hours: hours, notes: in.Notes, source: source}, nil
}

// normalizeHours 校验工时非负并按四舍五入保留两位小数
func normalizeHours(hours decimal.Decimal) (decimal.Decimal, error) {
	if hours.IsNegative() {
		return decimal.Zero, apperror.Validation("hours", "must be non-negative")
	}
	rounded := hours.Round(2)
	if rounded.GreaterThanOrEqual(maxEntryHours) {
		return decimal.Zero, apperror.Validation("hours", "exceeds numeric(5,2) precision")
	}
	return rounded, nil
}

// checkAuthor 作者必须存在、启用且不是只读角色
func (s *entryService) checkAuthor(ctx context.Context, userID int64) error {
	author, err := s.directory.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !author.Active {
		return apperror.Forbidden("user %d is inactive", userID)
	}
	if author.Role == model.RoleReadOnly {
		return apperror.Forbidden("read-only users cannot log time")
	}
	return nil
}

// checkProjectAndTask 校验项目分配、项目状态和任务归属,返回任务(可为空)
func (s *entryService) checkProjectAndTask(ctx context.Context, userID int64, in *EntryInput) (*model.TaskModel, error) {
	assigned, err := s.directory.IsUserAssignedToProject(ctx, userID, in.ProjectID)
	if err != nil {
		return nil, withField(err, "project_id")
	}
	if !assigned {
		return nil, apperror.Forbidden("user %d is not assigned to project %d", userID, in.ProjectID)
	}

	status, err := s.directory.ProjectStatus(ctx, in.ProjectID)
	if err != nil {
		return nil, withField(err, "project_id")
	}
	if status != model.ProjectActive {
		return nil, apperror.Validation("project_id", "project %d is %s, time can only be logged on active projects", in.ProjectID, status)
	}

	if in.TaskID == nil {
		return nil, nil
	}
	task, err := s.directory.GetTask(ctx, *in.TaskID)
	if err != nil {
		return nil, withField(err, "task_id")
	}
	if task.ProjectID != in.ProjectID {
		return nil, apperror.Validation("task_id", "task %d does not belong to project %d", task.ID, in.ProjectID)
	}
	return task, nil
}

// withField 为业务错误补充字段名
func withField(err error, field string) error {
	if appErr, ok := apperror.As(err); ok && appErr.Field == "" {
		cp := *appErr
		cp.Field = field
		return &cp
	}
	return err
}

// defaultBillable 未显式指定时沿用任务默认值,无任务时为 true
func defaultBillable(explicit *bool, task *model.TaskModel) bool {
	if explicit != nil {
		return *explicit
	}
	if task != nil {
		return task.BillableDefault
	}
	return true
}

// Create 创建草稿工时条目
func (s *entryService) Create(ctx context.Context, userID int64, in *EntryInput) (*model.TimeEntryModel, error) {
	// 1. 字段校验
	fields, err := validateFields(in)
	if err != nil {
		return nil, err
	}

	// 2. 作者与项目授权
	if err := s.checkAuthor(ctx, userID); err != nil {
		return nil, err
	}
	task, err := s.checkProjectAndTask(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	// 3. 写入草稿
	now := time.Now().UTC()
	entry := &model.TimeEntryModel{
		UserID:    userID,
		ProjectID: in.ProjectID,
		TaskID:    in.TaskID,
		WorkDate:  fields.workDate,
		Hours:     fields.hours,
		Billable:  defaultBillable(in.Billable, task),
		Notes:     fields.notes,
		State:     statemachine.Draft,
		Source:    fields.source,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, database.TranslateError(err, "")
	}

	metrics.RecordEntryCreated()
	recordAudit(ctx, s.auditLogSvc, userID, "create", "entry", idString(entry.ID), map[string]interface{}{
		"project_id": entry.ProjectID,
		"work_date":  entry.WorkDate.Format(DateLayout),
		"hours":      entry.Hours.StringFixed(2),
	})
	return entry, nil
}

// Update 编辑草稿,只有作者可以编辑
func (s *entryService) Update(ctx context.Context, userID, entryID int64, in *EntryInput) (*model.TimeEntryModel, error) {
	// 1. 条目存在、作者本人、仍为草稿
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperror.Forbidden("only the author can edit an entry").WithEntry(entryID)
	}
	if !entry.State.Editable() {
		return nil, conflictMetric("edit", apperror.Conflict("cannot edit an entry in state %q", entry.State).WithEntry(entryID))
	}

	// 2. 重新校验全部约束
	fields, err := validateFields(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, userID); err != nil {
		return nil, err
	}
	task, err := s.checkProjectAndTask(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	billable := entry.Billable
	if in.Billable != nil || !sameTask(entry.TaskID, in.TaskID) {
		billable = defaultBillable(in.Billable, task)
	}

	entry.ProjectID = in.ProjectID
	entry.TaskID = in.TaskID
	entry.WorkDate = fields.workDate
	entry.Hours = fields.hours
	entry.Billable = billable
	entry.Notes = fields.notes
	entry.Source = fields.source
	entry.UpdatedAt = time.Now().UTC()

	// 3. 带版本条件的更新
	ok, err := s.entries.UpdateDraft(ctx, entry)
	if err != nil {
		return nil, database.TranslateError(err, "")
	}
	if !ok {
		return nil, conflictMetric("edit", apperror.Conflict("entry was modified concurrently").WithEntry(entryID))
	}
	entry.Version++

	recordAudit(ctx, s.auditLogSvc, userID, "update", "entry", idString(entryID), map[string]interface{}{
		"hours": entry.Hours.StringFixed(2),
	})
	return entry, nil
}

func sameTask(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Get 获取工时条目
func (s *entryService) Get(ctx context.Context, entryID int64) (*model.TimeEntryModel, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.EntryNotFound(entryID)
		}
		return nil, fmt.Errorf("failed to load time entry: %w", err)
	}
	return entry, nil
}

// Resubmit 作者将被驳回的条目重新打开为草稿,清空批次号,保留审批记录
func (s *entryService) Resubmit(ctx context.Context, userID, entryID int64) (*model.TimeEntryModel, error) {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperror.Forbidden("only the author can resubmit an entry").WithEntry(entryID)
	}

	err = database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		return applyTransition(ctx, s.entries.WithTx(tx), s.history.WithTx(tx), transitionStep{
			entry:      entry,
			action:     statemachine.ActionResubmit,
			operator:   userID,
			reason:     "resubmitted by author",
			clearBatch: true,
			at:         time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, conflictMetric("resubmit", err)
	}

	recordAudit(ctx, s.auditLogSvc, userID, "resubmit", "entry", idString(entryID), nil)
	return entry, nil
}

// Delete 删除从未被审批过的草稿
func (s *entryService) Delete(ctx context.Context, userID, entryID int64) error {
	entry, err := s.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return apperror.Forbidden("only the author can delete an entry").WithEntry(entryID)
	}
	if entry.State != statemachine.Draft {
		return conflictMetric("delete", apperror.Conflict("cannot delete an entry in state %q", entry.State).WithEntry(entryID))
	}

	err = database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		decided, err := s.approvals.WithTx(tx).CountByEntryID(ctx, entryID)
		if err != nil {
			return err
		}
		if decided > 0 {
			return apperror.Conflict("entry has %d recorded approval decisions", decided).WithEntry(entryID)
		}
		ok, err := s.entries.WithTx(tx).DeleteDraft(ctx, entryID, entry.Version)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("entry was modified concurrently").WithEntry(entryID)
		}
		return nil
	})
	if err != nil {
		return conflictMetric("delete", err)
	}

	recordAudit(ctx, s.auditLogSvc, userID, "delete", "entry", idString(entryID), nil)
	return nil
}
