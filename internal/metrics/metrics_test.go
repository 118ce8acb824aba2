package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts map[statemachine.State]int64
	err    error
}

func (f *fakeCounter) CountByState(ctx context.Context) (map[statemachine.State]int64, error) {
	return f.counts, f.err
}

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// TestRecorders 测试业务指标导出
func TestRecorders(t *testing.T) {
	metrics.RecordEntryCreated()
	metrics.RecordSubmission(3)
	metrics.RecordDecision("approve", 2)
	metrics.RecordConflict("decide")
	metrics.RecordAPIRequest(http.MethodGet, "/api/v1/entries", http.StatusOK, 0.01)

	body := scrape(t)
	assert.Contains(t, body, "timesheet_entries_created_total")
	assert.Contains(t, body, "timesheet_submitted_entries_total")
	assert.Contains(t, body, `timesheet_decisions_total{decision="approve"}`)
	assert.Contains(t, body, `timesheet_conflicts_total{operation="decide"}`)
	assert.Contains(t, body, "timesheet_api_requests_total")
}

// TestCollector_CollectOnce 测试状态分布采集
func TestCollector_CollectOnce(t *testing.T) {
	db := testutil.NewDB(t)
	counter := &fakeCounter{counts: map[statemachine.State]int64{
		statemachine.Draft:     4,
		statemachine.Submitted: 2,
	}}

	c := metrics.NewCollector(db, counter, time.Minute)
	c.CollectOnce(context.Background())

	body := scrape(t)
	assert.Contains(t, body, `timesheet_entries_by_state{state="draft"} 4`)
	assert.Contains(t, body, `timesheet_entries_by_state{state="submitted"} 2`)
	assert.Contains(t, body, "timesheet_database_connections_max 1")
}

// TestCollector_StartStop 测试收集器启动与停止
func TestCollector_StartStop(t *testing.T) {
	db := testutil.NewDB(t)
	c := metrics.NewCollector(db, &fakeCounter{err: errors.New("boom")}, 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}
