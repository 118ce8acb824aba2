package model

import (
	"errors"
	"time"
)

// ApprovalModel 审批决定记录
// 只追加,不更新也不删除;同一条目在多次提交周期中可以有多条记录
type ApprovalModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TimeEntryID    int64     `gorm:"not null;index" json:"time_entry_id"`
	ApproverUserID int64     `gorm:"not null;index" json:"approver_user_id"`
	Decision       Decision  `gorm:"type:varchar(16);not null;check:decision IN ('approve','reject')" json:"decision"`
	Comment        *string   `gorm:"type:text" json:"comment,omitempty"`
	DecidedAt      time.Time `gorm:"not null;index" json:"decided_at"`
}

// TableName 指定表名
func (ApprovalModel) TableName() string {
	return "approvals"
}

// Validate 验证审批记录模型
func (am *ApprovalModel) Validate() error {
	if am.TimeEntryID == 0 {
		return errors.New("time entry ID is required")
	}
	if am.ApproverUserID == 0 {
		return errors.New("approver ID is required")
	}
	if !am.Decision.Valid() {
		return errors.New("approval decision is invalid")
	}
	return nil
}
