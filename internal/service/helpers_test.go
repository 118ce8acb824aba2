package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/service"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/stretchr/testify/require"
)

// stack 测试用的一组服务
type stack struct {
	*testutil.Fixture
	ctx         context.Context
	audit       service.AuditLogService
	directory   service.DirectoryService
	entries     service.EntryService
	submissions service.SubmissionService
	approvals   service.ApprovalService
	queries     service.QueryService
	stats       service.StatisticsService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	f := testutil.NewFixture(t)
	cfg := workflowConfig()

	audit := service.NewAuditLogService(repository.NewAuditLogRepository(f.DB))
	directory := service.NewDirectoryService(f.DB, cfg, audit)
	return &stack{
		Fixture:     f,
		ctx:         service.WithActor(context.Background(), f.Admin.ID),
		audit:       audit,
		directory:   directory,
		entries:     service.NewEntryService(f.DB, cfg, directory, audit),
		submissions: service.NewSubmissionService(f.DB, cfg, audit),
		approvals:   service.NewApprovalService(f.DB, cfg, directory, audit),
		queries:     service.NewQueryService(f.DB, directory),
		stats:       service.NewStatisticsService(f.DB),
	}
}

func workflowConfig() config.WorkflowConfig {
	return config.WorkflowConfig{LockTimeout: 5 * time.Second, MaxBatchSize: 5}
}

// requireKind 断言错误类别
func requireKind(t *testing.T, err error, kind apperror.Kind) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, "unexpected error: %v", err)
	return appErr
}

// backdate 把一行记录的 updated_at 改到过去,返回写入的时间
func backdate(t *testing.T, s *stack, m interface{}, id int64) time.Time {
	t.Helper()
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.DB.Model(m).Where("id = ?", id).UpdateColumn("updated_at", old).Error)
	return old
}

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }
