package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimeEntryRepository_Transition 测试条件状态变更
func TestTimeEntryRepository_Transition(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)
	ctx := context.Background()

	e := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "7.50", statemachine.Draft)
	batch := "5f0c6a52-8a3e-4c59-9b59-3c1b1a1f2b70"

	ok, err := repo.Transition(ctx, &repository.Transition{
		ID: e.ID, From: statemachine.Draft, Version: e.Version, To: statemachine.Submitted, BatchID: &batch, At: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.Submitted, got.State)
	assert.Equal(t, int64(2), got.Version)
	require.NotNil(t, got.SubmitBatchID)
	assert.Equal(t, batch, *got.SubmitBatchID)

	// 旧版本号的变更不生效
	ok, err = repo.Transition(ctx, &repository.Transition{
		ID: e.ID, From: statemachine.Submitted, Version: e.Version, To: statemachine.Approved, At: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// 前置状态不符的变更不生效
	ok, err = repo.Transition(ctx, &repository.Transition{
		ID: e.ID, From: statemachine.Draft, Version: got.Version, To: statemachine.Submitted, At: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestTimeEntryRepository_TransitionClearsBatch 测试清空批次号
func TestTimeEntryRepository_TransitionClearsBatch(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)
	ctx := context.Background()

	e := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Rejected)
	batch := "b-1"
	require.NoError(t, f.DB.Model(e).Update("submit_batch_id", batch).Error)

	ok, err := repo.Transition(ctx, &repository.Transition{
		ID: e.ID, From: statemachine.Rejected, Version: 1, To: statemachine.Draft, ClearBatch: true, At: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SubmitBatchID)
}

// TestTimeEntryRepository_UpdateDraft 测试草稿更新只对草稿生效
func TestTimeEntryRepository_UpdateDraft(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)
	ctx := context.Background()

	draft := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "2", statemachine.Draft)
	draft.Hours = decimal.RequireFromString("3.25")
	draft.Billable = false
	draft.TaskID = &f.Meetings.ID
	draft.UpdatedAt = time.Now()

	ok, err := repo.UpdateDraft(ctx, draft)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.25", got.Hours.StringFixed(2))
	assert.False(t, got.Billable)
	require.NotNil(t, got.TaskID)
	assert.Equal(t, f.Meetings.ID, *got.TaskID)

	submitted := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 7), "2", statemachine.Submitted)
	ok, err = repo.UpdateDraft(ctx, submitted)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestTimeEntryRepository_FindByFilter 测试过滤与分页
func TestTimeEntryRepository_FindByFilter(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)
	ctx := context.Background()

	for day := 6; day <= 10; day++ {
		f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, day), "1", statemachine.Draft)
	}
	f.CreateEntry(t, f.Other.ID, testutil.Date(2025, 1, 6), "1", statemachine.Submitted)

	from := testutil.Date(2025, 1, 7)
	to := testutil.Date(2025, 1, 9)
	entries, total, err := repo.FindByFilter(ctx, &repository.TimeEntryFilter{
		UserID: &f.Contributor.ID, From: &from, To: &to, Page: 1, PageSize: 2, SortBy: "work_date", Order: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].WorkDate.Equal(from))

	submitted := statemachine.Submitted
	entries, total, err = repo.FindByFilter(ctx, &repository.TimeEntryFilter{State: &submitted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.Other.ID, entries[0].UserID)
}

// TestTimeEntryRepository_CountByState 测试按状态统计
func TestTimeEntryRepository_CountByState(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)

	f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)
	f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 7), "1", statemachine.Draft)
	f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 8), "1", statemachine.Approved)

	counts, err := repo.CountByState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[statemachine.Draft])
	assert.Equal(t, int64(1), counts[statemachine.Approved])
	assert.Equal(t, int64(0), counts[statemachine.Rejected])
}

// TestTimeEntryRepository_DeleteDraft 测试只能删除草稿
func TestTimeEntryRepository_DeleteDraft(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewTimeEntryRepository(f.DB)
	ctx := context.Background()

	submitted := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Submitted)
	ok, err := repo.DeleteDraft(ctx, submitted.ID, submitted.Version)
	require.NoError(t, err)
	assert.False(t, ok)

	draft := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 7), "1", statemachine.Draft)
	ok, err = repo.DeleteDraft(ctx, draft.ID, draft.Version)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestApprovalRepository_AppendOnly 测试审批记录按时间顺序追加
func TestApprovalRepository_AppendOnly(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewApprovalRepository(f.DB)
	ctx := context.Background()

	e := f.CreateEntry(t, f.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Approved)
	first := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Append(ctx, &model.ApprovalModel{TimeEntryID: e.ID, ApproverUserID: f.Lead.ID, Decision: model.DecisionReject, DecidedAt: first}))
	require.NoError(t, repo.Append(ctx, &model.ApprovalModel{TimeEntryID: e.ID, ApproverUserID: f.Lead.ID, Decision: model.DecisionApprove, DecidedAt: first.Add(30 * time.Minute)}))

	approvals, err := repo.FindByEntryID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2)
	assert.Equal(t, model.DecisionReject, approvals[0].Decision)
	assert.Equal(t, model.DecisionApprove, approvals[1].Decision)

	count, err := repo.CountByApprover(ctx, f.Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// TestAssignmentRepository 测试项目成员
func TestAssignmentRepository(t *testing.T) {
	f := testutil.NewFixture(t)
	repo := repository.NewAssignmentRepository(f.DB)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, f.Project.ID, f.Contributor.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, f.Project.ID, f.Outsider.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Delete(ctx, f.Project.ID, f.Contributor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
