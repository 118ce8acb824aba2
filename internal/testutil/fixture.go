package testutil

import (
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture 一套最小的目录数据
//
// Project 处于 active 状态,Lead 为指定审批人;
// Contributor、Other 和 ReadOnly 被分配到 Project。
type Fixture struct {
	DB          *gorm.DB
	Admin       *model.UserModel
	Lead        *model.UserModel
	Finance     *model.UserModel
	Contributor *model.UserModel
	Other       *model.UserModel
	ReadOnly    *model.UserModel
	Outsider    *model.UserModel // 未分配到任何项目的 contributor
	Client      *model.ClientModel
	Project     *model.ProjectModel
	Task        *model.TaskModel // billable_default = true
	Meetings    *model.TaskModel // billable_default = false
}

// Date 返回 UTC 零点日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewFixture 在新的内存数据库中写入目录数据
func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	db := NewDB(t)
	now := time.Now().UTC()

	f := &Fixture{DB: db}
	f.Admin = CreateUser(t, db, "Admin User", "admin@example.com", model.RoleAdmin)
	f.Lead = CreateUser(t, db, "Project Lead", "lead@example.com", model.RoleLead)
	f.Finance = CreateUser(t, db, "Finance Person", "finance@example.com", model.RoleFinance)
	f.Contributor = CreateUser(t, db, "Contributor One", "contrib@example.com", model.RoleContributor)
	f.Other = CreateUser(t, db, "Contributor Two", "contrib2@example.com", model.RoleContributor)
	f.ReadOnly = CreateUser(t, db, "Viewer", "viewer@example.com", model.RoleReadOnly)
	f.Outsider = CreateUser(t, db, "Outsider", "outsider@example.com", model.RoleContributor)

	f.Client = &model.ClientModel{Name: "Acme A/S", Currency: "DKK", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(f.Client).Error)

	f.Project = CreateProject(t, db, f.Client.ID, "ACM-001", model.ProjectActive, &f.Lead.ID)

	f.Task = &model.TaskModel{ProjectID: f.Project.ID, Name: "Development", BillableDefault: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(f.Task).Error)
	f.Meetings = &model.TaskModel{ProjectID: f.Project.ID, Name: "Meetings", BillableDefault: false, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(f.Meetings).Error)

	for _, u := range []*model.UserModel{f.Contributor, f.Other, f.ReadOnly} {
		Assign(t, db, f.Project.ID, u.ID)
	}
	return f
}

// CreateUser 创建活跃用户
func CreateUser(t testing.TB, db *gorm.DB, name, email string, role model.Role) *model.UserModel {
	t.Helper()
	now := time.Now().UTC()
	u := &model.UserModel{Name: name, Email: email, Role: role, Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateProject 创建项目
func CreateProject(t testing.TB, db *gorm.DB, clientID int64, code string, status model.ProjectStatus, approver *int64) *model.ProjectModel {
	t.Helper()
	now := time.Now().UTC()
	p := &model.ProjectModel{
		ClientID:       clientID,
		Code:           code,
		Name:           code + " project",
		Status:         status,
		ApproverUserID: approver,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Assign 将用户分配到项目
func Assign(t testing.TB, db *gorm.DB, projectID, userID int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.AssignmentModel{ProjectID: projectID, UserID: userID, CreatedAt: time.Now().UTC()}).Error)
}

// CreateEntry 直接写入一条指定状态的工时条目
func (f *Fixture) CreateEntry(t testing.TB, userID int64, day time.Time, hours string, state statemachine.State) *model.TimeEntryModel {
	t.Helper()
	now := time.Now().UTC()
	e := &model.TimeEntryModel{
		UserID:    userID,
		ProjectID: f.Project.ID,
		WorkDate:  day,
		Hours:     decimal.RequireFromString(hours),
		Billable:  true,
		State:     state,
		Source:    model.SourceManual,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.DB.Create(e).Error)
	return e
}
