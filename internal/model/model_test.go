package model_test

import (
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestTableNames 测试表名
func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", model.UserModel{}.TableName())
	assert.Equal(t, "project_assignments", model.AssignmentModel{}.TableName())
	assert.Equal(t, "time_entries", model.TimeEntryModel{}.TableName())
	assert.Equal(t, "approvals", model.ApprovalModel{}.TableName())
	assert.Equal(t, "entry_state_history", model.StateHistoryModel{}.TableName())
}

// TestRole 测试角色判断
func TestRole(t *testing.T) {
	assert.True(t, model.RoleFinance.CanDecide())
	assert.False(t, model.RoleContributor.CanDecide())
	assert.False(t, model.RoleReadOnly.CanDecide())
	assert.True(t, model.RoleReadOnly.Valid())
	assert.False(t, model.Role("owner").Valid())
}

// TestTimeEntryModel_Validate 测试工时条目校验
func TestTimeEntryModel_Validate(t *testing.T) {
	valid := model.TimeEntryModel{
		UserID:    1,
		ProjectID: 2,
		WorkDate:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.RequireFromString("7.50"),
		State:     statemachine.Draft,
		Source:    model.SourceManual,
	}
	assert.NoError(t, valid.Validate())

	negative := valid
	negative.Hours = decimal.RequireFromString("-1")
	assert.Error(t, negative.Validate())

	badSource := valid
	badSource.Source = "email"
	assert.Error(t, badSource.Validate())

	noDate := valid
	noDate.WorkDate = time.Time{}
	assert.Error(t, noDate.Validate())
}

// TestApprovalModel_Validate 测试审批记录校验
func TestApprovalModel_Validate(t *testing.T) {
	a := model.ApprovalModel{TimeEntryID: 1, ApproverUserID: 2, Decision: model.DecisionApprove}
	assert.NoError(t, a.Validate())

	a.Decision = "maybe"
	assert.Error(t, a.Validate())
}

// TestClientModel_Validate 测试客户校验
func TestClientModel_Validate(t *testing.T) {
	c := model.ClientModel{Name: "Acme A/S", Currency: "DKK"}
	assert.NoError(t, c.Validate())
	c.Currency = "DK"
	assert.Error(t, c.Validate())
}
