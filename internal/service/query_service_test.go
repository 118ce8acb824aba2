package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/service"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueryService_ListEntries 测试列表过滤、排序与可见范围
func TestQueryService_ListEntries(t *testing.T) {
	s := newStack(t)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 8), "3", statemachine.Submitted)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 2, 3), "2", statemachine.Approved)
	s.CreateEntry(t, s.Other.ID, testutil.Date(2025, 1, 7), "5", statemachine.Draft)

	// 贡献者只看到自己的条目
	entries, total, err := s.queries.ListEntries(s.ctx, s.Contributor.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.True(t, testutil.Date(2025, 2, 3).Equal(entries[0].WorkDate))

	_, _, err = s.queries.ListEntries(s.ctx, s.Contributor.ID, &service.ListEntriesFilter{UserID: int64Ptr(s.Other.ID)})
	requireKind(t, err, apperror.KindForbidden)

	// 审批人看到全部
	_, total, err = s.queries.ListEntries(s.ctx, s.Lead.ID, &service.ListEntriesFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	entries, total, err = s.queries.ListEntries(s.ctx, s.Lead.ID, &service.ListEntriesFilter{
		From: strPtr("2025-01-01"), To: strPtr("2025-01-31"), SortBy: "hours", Order: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, "1.00", entries[0].Hours.StringFixed(2))
	assert.Equal(t, "5.00", entries[2].Hours.StringFixed(2))

	state := string(statemachine.Submitted)
	entries, _, err = s.queries.ListEntries(s.ctx, s.Finance.ID, &service.ListEntriesFilter{State: &state})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, total, err = s.queries.ListEntries(s.ctx, s.Admin.ID, &service.ListEntriesFilter{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, entries, 1)
}

// TestQueryService_ListEntriesValidation 测试查询参数校验
func TestQueryService_ListEntriesValidation(t *testing.T) {
	s := newStack(t)

	cases := []struct {
		name   string
		filter *service.ListEntriesFilter
		field  string
	}{
		{"sort injection", &service.ListEntriesFilter{SortBy: "hours; DROP TABLE users"}, "sort_by"},
		{"unknown sort", &service.ListEntriesFilter{SortBy: "notes"}, "sort_by"},
		{"bad order", &service.ListEntriesFilter{Order: "sideways"}, "order"},
		{"bad state", &service.ListEntriesFilter{State: strPtr("archived")}, "state"},
		{"bad date", &service.ListEntriesFilter{From: strPtr("yesterday")}, "from"},
		{"reversed range", &service.ListEntriesFilter{From: strPtr("2025-02-01"), To: strPtr("2025-01-01")}, "to"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.queries.ListEntries(s.ctx, s.Lead.ID, tc.filter)
			appErr := requireKind(t, err, apperror.KindValidation)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}
}

// TestQueryService_Visibility 测试审批记录与历史的查看权限
func TestQueryService_Visibility(t *testing.T) {
	s := newStack(t)
	e := s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)

	_, err := s.queries.GetHistory(s.ctx, s.Other.ID, e.ID)
	requireKind(t, err, apperror.KindForbidden)

	_, err = s.queries.GetHistory(s.ctx, s.ReadOnly.ID, e.ID)
	assert.NoError(t, err)

	_, err = s.queries.GetApprovals(s.ctx, s.Contributor.ID, 9999)
	requireKind(t, err, apperror.KindNotFound)
}

// TestQueryService_ApproverVisibility 测试指定审批人可以看到所审批项目的条目
func TestQueryService_ApproverVisibility(t *testing.T) {
	s := newStack(t)
	approved := testutil.CreateProject(t, s.DB, s.Client.ID, "ACM-002", model.ProjectActive, &s.Contributor.ID)
	testutil.Assign(t, s.DB, approved.ID, s.Other.ID)

	own := s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)
	theirs := s.CreateEntry(t, s.Other.ID, testutil.Date(2025, 1, 7), "2", statemachine.Submitted)
	require.NoError(t, s.DB.Model(theirs).UpdateColumn("project_id", approved.ID).Error)
	hidden := s.CreateEntry(t, s.Other.ID, testutil.Date(2025, 1, 8), "3", statemachine.Draft)

	entries, total, err := s.queries.ListEntries(s.ctx, s.Contributor.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	ids := []int64{}
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []int64{own.ID, theirs.ID}, ids)

	// 显式指定自己时只返回本人条目
	entries, _, err = s.queries.ListEntries(s.ctx, s.Contributor.ID, &service.ListEntriesFilter{UserID: int64Ptr(s.Contributor.ID)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, own.ID, entries[0].ID)

	// 与单条查看的可见范围一致
	_, err = s.queries.GetEntry(s.ctx, s.Contributor.ID, theirs.ID)
	assert.NoError(t, err)
	_, err = s.queries.GetEntry(s.ctx, s.Contributor.ID, hidden.ID)
	requireKind(t, err, apperror.KindForbidden)
}

// approverLookupError ProjectApprover 始终失败的目录查询
type approverLookupError struct {
	service.DirectoryLookup
	err error
}

func (l approverLookupError) ProjectApprover(context.Context, int64) (*int64, error) {
	return nil, l.err
}

// TestQueryService_VisibilityLookupError 测试审批人查询失败时返回原始错误
func TestQueryService_VisibilityLookupError(t *testing.T) {
	s := newStack(t)
	e := s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)

	lookupErr := errors.New("connection reset")
	queries := service.NewQueryService(s.DB, approverLookupError{DirectoryLookup: s.directory, err: lookupErr})

	_, err := queries.GetEntry(s.ctx, s.Other.ID, e.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	_, isAppErr := apperror.As(err)
	assert.False(t, isAppErr)

	// 本人查看不依赖审批人查询
	_, err = queries.GetEntry(s.ctx, s.Contributor.ID, e.ID)
	assert.NoError(t, err)
}

// TestQueryService_WeekView 测试周视图
func TestQueryService_WeekView(t *testing.T) {
	s := newStack(t)

	view, err := s.queries.WeekView(s.ctx, s.Contributor.ID, s.Contributor.ID, 2025, 2)
	require.NoError(t, err)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2025-01-06", view.Days[0].Date)
	assert.Equal(t, "2025-01-12", view.Days[6].Date)
	assert.Equal(t, "0.00", view.Total)
	assert.Equal(t, "draft", view.Status)

	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "7.5", statemachine.Approved)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 6), "0.25", statemachine.Approved)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 10), "4", statemachine.Approved)
	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 13), "9", statemachine.Draft)

	view, err = s.queries.WeekView(s.ctx, s.Contributor.ID, s.Contributor.ID, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, "11.75", view.Total)
	assert.Equal(t, "7.75", view.Days[0].Hours)
	assert.Len(t, view.Days[0].Entries, 2)
	assert.Equal(t, "0.00", view.Days[1].Hours)
	assert.Empty(t, view.Days[1].Entries)
	assert.Equal(t, "4.00", view.Days[4].Hours)
	assert.Equal(t, "approved", view.Status)

	s.CreateEntry(t, s.Contributor.ID, testutil.Date(2025, 1, 7), "1", statemachine.Submitted)
	view, err = s.queries.WeekView(s.ctx, s.Contributor.ID, s.Contributor.ID, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, "submitted", view.Status)

	// 审批人可以查看他人,贡献者不行
	_, err = s.queries.WeekView(s.ctx, s.Lead.ID, s.Contributor.ID, 2025, 2)
	assert.NoError(t, err)
	_, err = s.queries.WeekView(s.ctx, s.Other.ID, s.Contributor.ID, 2025, 2)
	requireKind(t, err, apperror.KindForbidden)

	_, err = s.queries.WeekView(s.ctx, s.Contributor.ID, s.Contributor.ID, 2025, 0)
	requireKind(t, err, apperror.KindValidation)
}

// TestStatisticsService 测试统计
func TestStatisticsService(t *testing.T) {
	s := newStack(t)
	_, entries := submitted(t, s, s.Contributor.ID, "4", "2.5")
	s.CreateEntry(t, s.Other.ID, testutil.Date(2025, 1, 6), "1", statemachine.Draft)

	_, err := s.approvals.Decide(s.ctx, s.Lead.ID, entries[0].ID, model.DecisionApprove, nil)
	require.NoError(t, err)
	_, err = s.approvals.Decide(s.ctx, s.Lead.ID, entries[1].ID, model.DecisionReject, nil)
	require.NoError(t, err)

	byState, err := s.stats.GetEntryStatisticsByState(s.ctx)
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, st := range byState {
		counts[st.State] = st.Count
	}
	assert.Equal(t, map[string]int64{"draft": 1, "submitted": 0, "approved": 1, "rejected": 1}, counts)

	approvals, err := s.stats.GetApprovalStatistics(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), approvals.TotalDecisions)
	assert.Equal(t, int64(1), approvals.ApprovedCount)
	assert.InDelta(t, 50.0, approvals.ApprovalRate, 0.001)

	hours, err := s.stats.GetHoursByProject(s.ctx)
	require.NoError(t, err)
	require.Len(t, hours, 3)
	for _, h := range hours {
		assert.Equal(t, "ACM-001", h.ProjectCode)
	}
}

// TestSeedService 测试初始化数据可重复执行
func TestSeedService(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	directory := service.NewDirectoryService(db, workflowConfig(), nil)
	seeder := service.NewSeedService(db, directory)

	result, err := seeder.SeedDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.UsersCreated)
	assert.Equal(t, 1, result.ClientsCreated)
	assert.Equal(t, 1, result.ProjectsCreated)
	assert.Equal(t, 3, result.TasksCreated)

	again, err := seeder.SeedDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, &service.SeedResult{}, again)

	projects, err := directory.ListProjects(ctx, nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Athene POC", projects[0].Name)
	assert.Equal(t, model.ProjectActive, projects[0].Status)
	require.NotNil(t, projects[0].ApproverUserID)

	client, err := directory.GetClient(ctx, projects[0].ClientID)
	require.NoError(t, err)
	assert.Equal(t, "DKK", client.Currency)

	tasks, err := directory.ListTasks(ctx, projects[0].ID)
	require.NoError(t, err)
	billable := map[string]bool{}
	for _, task := range tasks {
		billable[task.Name] = task.BillableDefault
	}
	assert.Equal(t, map[string]bool{"Analysis": true, "Development": true, "Meetings": false}, billable)

	members, err := directory.ListAssignments(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

// TestParseSeed 未知字段被拒绝
func TestParseSeed(t *testing.T) {
	_, err := service.ParseSeed([]byte("users:\n  - name: A\n    mail: a@example.com\n"))
	assert.Error(t, err)

	seed, err := service.ParseSeed([]byte("users:\n  - name: A\n    email: a@example.com\n    role: lead\n"))
	require.NoError(t, err)
	require.Len(t, seed.Users, 1)
	assert.Equal(t, model.RoleLead, seed.Users[0].Role)
}
