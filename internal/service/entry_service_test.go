package service_test

import (
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/service"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryInput(s *stack, date, hours string) *service.EntryInput {
	return &service.EntryInput{
		ProjectID: s.Project.ID,
		TaskID:    int64Ptr(s.Task.ID),
		WorkDate:  date,
		Hours:     decimal.RequireFromString(hours),
	}
}

// TestEntryService_Create 测试创建草稿
func TestEntryService_Create(t *testing.T) {
	s := newStack(t)

	entry, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "7.555"))
	require.NoError(t, err)

	assert.Equal(t, statemachine.Draft, entry.State)
	assert.Equal(t, int64(1), entry.Version)
	assert.Equal(t, "7.56", entry.Hours.StringFixed(2))
	assert.True(t, entry.Billable)
	assert.Equal(t, model.SourceManual, entry.Source)
	assert.Equal(t, testutil.Date(2025, 1, 6), entry.WorkDate)
	assert.Nil(t, entry.SubmitBatchID)

	got, err := s.entries.Get(s.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.56", got.Hours.StringFixed(2))
}

// TestEntryService_CreateBillableFromTask 未指定 billable 时沿用任务默认值
func TestEntryService_CreateBillableFromTask(t *testing.T) {
	s := newStack(t)

	in := entryInput(s, "2025-01-06", "1")
	in.TaskID = int64Ptr(s.Meetings.ID)
	entry, err := s.entries.Create(s.ctx, s.Contributor.ID, in)
	require.NoError(t, err)
	assert.False(t, entry.Billable)

	in.Billable = boolPtr(true)
	entry, err = s.entries.Create(s.ctx, s.Contributor.ID, in)
	require.NoError(t, err)
	assert.True(t, entry.Billable)

	in = entryInput(s, "2025-01-06", "1")
	in.TaskID = nil
	entry, err = s.entries.Create(s.ctx, s.Contributor.ID, in)
	require.NoError(t, err)
	assert.True(t, entry.Billable)
}

// TestEntryService_CreateZeroHours 零工时合法
func TestEntryService_CreateZeroHours(t *testing.T) {
	s := newStack(t)

	entry, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "0"))
	require.NoError(t, err)
	assert.True(t, entry.Hours.IsZero())
}

// TestEntryService_CreateValidation 测试字段校验
func TestEntryService_CreateValidation(t *testing.T) {
	s := newStack(t)

	cases := []struct {
		name  string
		in    *service.EntryInput
		field string
	}{
		{"negative hours", entryInput(s, "2025-01-06", "-1"), "hours"},
		{"hours overflow", entryInput(s, "2025-01-06", "1000"), "hours"},
		{"rounds to overflow", entryInput(s, "2025-01-06", "999.999"), "hours"},
		{"bad date", entryInput(s, "06/01/2025", "1"), "work_date"},
		{"unknown source", func() *service.EntryInput {
			in := entryInput(s, "2025-01-06", "1")
			in.Source = "fax"
			return in
		}(), "source"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.entries.Create(s.ctx, s.Contributor.ID, tc.in)
			appErr := requireKind(t, err, apperror.KindValidation)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}

	_, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "999.99"))
	assert.NoError(t, err)
}

// TestEntryService_CreateAuthorization 测试作者与项目授权
func TestEntryService_CreateAuthorization(t *testing.T) {
	s := newStack(t)

	// 未分配到项目
	_, err := s.entries.Create(s.ctx, s.Outsider.ID, entryInput(s, "2025-01-06", "1"))
	requireKind(t, err, apperror.KindForbidden)

	// 只读用户即使被分配也不能记工时
	_, err = s.entries.Create(s.ctx, s.ReadOnly.ID, entryInput(s, "2025-01-06", "1"))
	requireKind(t, err, apperror.KindForbidden)

	// 停用用户
	s.Other.Active = false
	require.NoError(t, s.DB.Save(s.Other).Error)
	_, err = s.entries.Create(s.ctx, s.Other.ID, entryInput(s, "2025-01-06", "1"))
	requireKind(t, err, apperror.KindForbidden)

	// 管理员无需分配
	_, err = s.entries.Create(s.ctx, s.Admin.ID, entryInput(s, "2025-01-06", "1"))
	assert.NoError(t, err)

	// 作者不存在
	_, err = s.entries.Create(s.ctx, 9999, entryInput(s, "2025-01-06", "1"))
	requireKind(t, err, apperror.KindNotFound)
}

// TestEntryService_CreateReferences 测试项目与任务引用
func TestEntryService_CreateReferences(t *testing.T) {
	s := newStack(t)

	in := entryInput(s, "2025-01-06", "1")
	in.ProjectID = 9999
	_, err := s.entries.Create(s.ctx, s.Contributor.ID, in)
	appErr := requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, "project_id", appErr.Field)

	in = entryInput(s, "2025-01-06", "1")
	in.TaskID = int64Ptr(9999)
	_, err = s.entries.Create(s.ctx, s.Contributor.ID, in)
	appErr = requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, "task_id", appErr.Field)

	// 任务属于其他项目
	planned := testutil.CreateProject(t, s.DB, s.Client.ID, "ACM-002", model.ProjectPlanned, nil)
	testutil.Assign(t, s.DB, planned.ID, s.Contributor.ID)
	otherTask := &model.TaskModel{ProjectID: planned.ID, Name: "Design", CreatedAt: s.Task.CreatedAt, UpdatedAt: s.Task.UpdatedAt}
	require.NoError(t, s.DB.Create(otherTask).Error)

	in = entryInput(s, "2025-01-06", "1")
	in.TaskID = int64Ptr(otherTask.ID)
	_, err = s.entries.Create(s.ctx, s.Contributor.ID, in)
	appErr = requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "task_id", appErr.Field)

	// 项目未激活
	in = entryInput(s, "2025-01-06", "1")
	in.ProjectID = planned.ID
	in.TaskID = nil
	_, err = s.entries.Create(s.ctx, s.Contributor.ID, in)
	appErr = requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, "project_id", appErr.Field)
}

// TestEntryService_Update 测试编辑草稿
func TestEntryService_Update(t *testing.T) {
	s := newStack(t)

	entry, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "2"))
	require.NoError(t, err)

	in := entryInput(s, "2025-01-07", "3.25")
	in.Notes = strPtr("pairing")
	updated, err := s.entries.Update(s.ctx, s.Contributor.ID, entry.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "3.25", updated.Hours.StringFixed(2))
	assert.Equal(t, int64(2), updated.Version)

	got, err := s.entries.Get(s.ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, testutil.Date(2025, 1, 7).Equal(got.WorkDate))
	require.NotNil(t, got.Notes)
	assert.Equal(t, "pairing", *got.Notes)
	assert.Equal(t, int64(2), got.Version)

	// 切换到非计费任务时重新推导 billable
	in.TaskID = int64Ptr(s.Meetings.ID)
	updated, err = s.entries.Update(s.ctx, s.Contributor.ID, entry.ID, in)
	require.NoError(t, err)
	assert.False(t, updated.Billable)
}

// TestEntryService_UpdateRules 测试编辑的错误顺序
func TestEntryService_UpdateRules(t *testing.T) {
	s := newStack(t)
	day := testutil.Date(2025, 1, 6)

	_, err := s.entries.Update(s.ctx, s.Contributor.ID, 9999, entryInput(s, "2025-01-06", "1"))
	appErr := requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, int64(9999), appErr.EntryID)

	draft := s.CreateEntry(t, s.Contributor.ID, day, "1", statemachine.Draft)
	_, err = s.entries.Update(s.ctx, s.Other.ID, draft.ID, entryInput(s, "2025-01-06", "1"))
	requireKind(t, err, apperror.KindForbidden)

	// 非草稿状态优先于字段校验
	for _, state := range []statemachine.State{statemachine.Submitted, statemachine.Approved, statemachine.Rejected} {
		e := s.CreateEntry(t, s.Contributor.ID, day, "1", state)
		_, err = s.entries.Update(s.ctx, s.Contributor.ID, e.ID, entryInput(s, "2025-01-06", "-5"))
		appErr = requireKind(t, err, apperror.KindConflict)
		assert.Equal(t, e.ID, appErr.EntryID)
	}

	_, err = s.entries.Update(s.ctx, s.Contributor.ID, draft.ID, entryInput(s, "2025-01-06", "-5"))
	requireKind(t, err, apperror.KindValidation)
}

// TestEntryService_Resubmit 测试驳回后重新打开
func TestEntryService_Resubmit(t *testing.T) {
	s := newStack(t)
	day := testutil.Date(2025, 1, 6)

	e, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "4"))
	require.NoError(t, err)
	sub, err := s.submissions.Submit(s.ctx, s.Contributor.ID, []int64{e.ID})
	require.NoError(t, err)
	_, err = s.approvals.Decide(s.ctx, s.Lead.ID, e.ID, model.DecisionReject, strPtr("wrong task"))
	require.NoError(t, err)

	rejected, err := s.entries.Get(s.ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, rejected.SubmitBatchID)
	assert.Equal(t, sub.BatchID, *rejected.SubmitBatchID)

	// 只有作者可以重新打开
	_, err = s.entries.Resubmit(s.ctx, s.Other.ID, e.ID)
	requireKind(t, err, apperror.KindForbidden)

	reopened, err := s.entries.Resubmit(s.ctx, s.Contributor.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.Draft, reopened.State)
	assert.Nil(t, reopened.SubmitBatchID)

	// 审批记录保留
	approvals, err := s.queries.GetApprovals(s.ctx, s.Contributor.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, model.DecisionReject, approvals[0].Decision)

	// 重新打开后可以再次编辑
	_, err = s.entries.Update(s.ctx, s.Contributor.ID, e.ID, entryInput(s, "2025-01-06", "5"))
	assert.NoError(t, err)

	// 只能从 rejected 重新打开
	draft := s.CreateEntry(t, s.Contributor.ID, day, "1", statemachine.Draft)
	_, err = s.entries.Resubmit(s.ctx, s.Contributor.ID, draft.ID)
	requireKind(t, err, apperror.KindConflict)
}

// TestEntryService_Delete 测试删除草稿
func TestEntryService_Delete(t *testing.T) {
	s := newStack(t)
	day := testutil.Date(2025, 1, 6)

	draft := s.CreateEntry(t, s.Contributor.ID, day, "1", statemachine.Draft)
	err := s.entries.Delete(s.ctx, s.Other.ID, draft.ID)
	requireKind(t, err, apperror.KindForbidden)

	require.NoError(t, s.entries.Delete(s.ctx, s.Contributor.ID, draft.ID))
	_, err = s.entries.Get(s.ctx, draft.ID)
	requireKind(t, err, apperror.KindNotFound)

	submitted := s.CreateEntry(t, s.Contributor.ID, day, "1", statemachine.Submitted)
	err = s.entries.Delete(s.ctx, s.Contributor.ID, submitted.ID)
	requireKind(t, err, apperror.KindConflict)

	// 曾被驳回并重新打开的草稿保留审批记录,不能删除
	e, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "2"))
	require.NoError(t, err)
	_, err = s.submissions.Submit(s.ctx, s.Contributor.ID, []int64{e.ID})
	require.NoError(t, err)
	_, err = s.approvals.Decide(s.ctx, s.Lead.ID, e.ID, model.DecisionReject, nil)
	require.NoError(t, err)
	_, err = s.entries.Resubmit(s.ctx, s.Contributor.ID, e.ID)
	require.NoError(t, err)

	err = s.entries.Delete(s.ctx, s.Contributor.ID, e.ID)
	appErr := requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, e.ID, appErr.EntryID)
}

// TestEntryService_UpdatedAtRefresh 测试编辑和每次状态变更都刷新 updated_at
func TestEntryService_UpdatedAtRefresh(t *testing.T) {
	s := newStack(t)
	e, err := s.entries.Create(s.ctx, s.Contributor.ID, entryInput(s, "2025-01-06", "4"))
	require.NoError(t, err)

	requireRefreshed := func(step string, old time.Time) {
		t.Helper()
		got, err := s.entries.Get(s.ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, got.UpdatedAt.After(old), "%s: updated_at %v", step, got.UpdatedAt)
	}

	old := backdate(t, s, &model.TimeEntryModel{}, e.ID)
	_, err = s.entries.Update(s.ctx, s.Contributor.ID, e.ID, entryInput(s, "2025-01-06", "5"))
	require.NoError(t, err)
	requireRefreshed("update", old)

	old = backdate(t, s, &model.TimeEntryModel{}, e.ID)
	_, err = s.submissions.Submit(s.ctx, s.Contributor.ID, []int64{e.ID})
	require.NoError(t, err)
	requireRefreshed("submit", old)

	old = backdate(t, s, &model.TimeEntryModel{}, e.ID)
	_, err = s.approvals.Decide(s.ctx, s.Lead.ID, e.ID, model.DecisionReject, nil)
	require.NoError(t, err)
	requireRefreshed("reject", old)

	old = backdate(t, s, &model.TimeEntryModel{}, e.ID)
	_, err = s.entries.Resubmit(s.ctx, s.Contributor.ID, e.ID)
	require.NoError(t, err)
	requireRefreshed("resubmit", old)

	_, err = s.submissions.Submit(s.ctx, s.Contributor.ID, []int64{e.ID})
	require.NoError(t, err)
	old = backdate(t, s, &model.TimeEntryModel{}, e.ID)
	_, err = s.approvals.Decide(s.ctx, s.Lead.ID, e.ID, model.DecisionApprove, nil)
	require.NoError(t, err)
	requireRefreshed("approve", old)
}
