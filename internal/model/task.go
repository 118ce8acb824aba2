package model

import (
	"errors"
	"time"
)

// TaskModel 项目任务数据模型
type TaskModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID       int64     `gorm:"not null;index" json:"project_id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	BillableDefault bool      `gorm:"not null" json:"billable_default"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (TaskModel) TableName() string {
	return "tasks"
}

// Validate 验证任务模型
func (tm *TaskModel) Validate() error {
	if tm.ProjectID == 0 {
		return errors.New("project ID is required")
	}
	if tm.Name == "" {
		return errors.New("task name is required")
	}
	return nil
}
