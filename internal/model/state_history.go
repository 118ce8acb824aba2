package model

import (
	"errors"
	"time"

	"github.com/mautops/timesheet-gin/internal/statemachine"
)

// StateHistoryModel 工时条目状态变更历史
type StateHistoryModel struct {
	ID            int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	TimeEntryID   int64              `gorm:"not null;index" json:"time_entry_id"`
	FromState     statemachine.State `gorm:"type:varchar(16)" json:"from_state"`
	ToState       statemachine.State `gorm:"type:varchar(16);not null" json:"to_state"`
	Reason        string             `gorm:"type:text" json:"reason,omitempty"`
	SubmitBatchID *string            `gorm:"type:varchar(36)" json:"submit_batch_id,omitempty"`
	Operator      int64              `gorm:"not null" json:"operator"`
	CreatedAt     time.Time          `gorm:"not null;index" json:"created_at"`
}

// TableName 指定表名
func (StateHistoryModel) TableName() string {
	return "entry_state_history"
}

// Validate 验证状态历史模型
func (shm *StateHistoryModel) Validate() error {
	if shm.TimeEntryID == 0 {
		return errors.New("time entry ID is required")
	}
	if shm.ToState == "" {
		return errors.New("to state is required")
	}
	if shm.Operator == 0 {
		return errors.New("operator is required")
	}
	return nil
}
