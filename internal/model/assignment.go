package model

import "time"

// AssignmentModel 项目成员分配
// 只有被分配到项目的用户才能登记该项目的工时(管理员除外)
type AssignmentModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"not null;uniqueIndex:idx_assignments_project_user,priority:1" json:"project_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_assignments_project_user,priority:2;index" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (AssignmentModel) TableName() string {
	return "project_assignments"
}
