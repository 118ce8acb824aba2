package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectModel 项目数据模型
type ProjectModel struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID       int64            `gorm:"not null;uniqueIndex:idx_projects_client_code,priority:1" json:"client_id"`
	Code           string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_projects_client_code,priority:2" json:"code"`
	Name           string           `gorm:"type:varchar(255);not null" json:"name"`
	StartDate      *time.Time       `gorm:"type:date" json:"start_date,omitempty"`
	EndDate        *time.Time       `gorm:"type:date" json:"end_date,omitempty"`
	BudgetHours    *decimal.Decimal `gorm:"type:numeric(8,2);check:budget_hours IS NULL OR budget_hours >= 0" json:"budget_hours,omitempty"`
	Status         ProjectStatus    `gorm:"type:varchar(16);not null;default:'planned';index;check:status IN ('planned','active','closed')" json:"status"`
	ApproverUserID *int64           `gorm:"index" json:"approver_user_id,omitempty"`
	CreatedAt      time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (ProjectModel) TableName() string {
	return "projects"
}

// Validate 验证项目模型
func (pm *ProjectModel) Validate() error {
	if pm.ClientID == 0 {
		return errors.New("client ID is required")
	}
	if pm.Code == "" {
		return errors.New("project code is required")
	}
	if pm.Name == "" {
		return errors.New("project name is required")
	}
	if !pm.Status.Valid() {
		return errors.New("project status is invalid")
	}
	return nil
}
