package model

import (
	"errors"
	"time"

	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/shopspring/decimal"
)

// TimeEntryModel 工时条目数据模型
type TimeEntryModel struct {
	ID            int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64              `gorm:"not null;index:idx_time_entries_user_date,priority:1" json:"user_id"`
	ProjectID     int64              `gorm:"not null;index" json:"project_id"`
	TaskID        *int64             `gorm:"index" json:"task_id,omitempty"`
	WorkDate      time.Time          `gorm:"type:date;not null;index:idx_time_entries_user_date,priority:2" json:"work_date"`
	Hours         decimal.Decimal    `gorm:"type:numeric(5,2);not null;check:hours >= 0" json:"hours"`
	Billable      bool               `gorm:"not null" json:"billable"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	State         statemachine.State `gorm:"type:varchar(16);not null;default:'draft';index;check:state IN ('draft','submitted','approved','rejected')" json:"state"`
	SubmitBatchID *string            `gorm:"type:varchar(36);index" json:"submit_batch_id,omitempty"`
	Source        EntrySource        `gorm:"type:varchar(16);not null;default:'manual';check:source IN ('manual','timer','import')" json:"source"`
	Version       int64              `gorm:"not null;default:1" json:"version"` // 乐观锁版本号
	CreatedAt     time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// Validate 验证工时条目模型
func (tm *TimeEntryModel) Validate() error {
	if tm.UserID == 0 {
		return errors.New("user ID is required")
	}
	if tm.ProjectID == 0 {
		return errors.New("project ID is required")
	}
	if tm.WorkDate.IsZero() {
		return errors.New("work date is required")
	}
	if tm.Hours.IsNegative() {
		return errors.New("hours must be non-negative")
	}
	if !tm.State.Valid() {
		return errors.New("entry state is invalid")
	}
	if !tm.Source.Valid() {
		return errors.New("entry source is invalid")
	}
	return nil
}
