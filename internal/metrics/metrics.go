package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const namespace = "timesheet"

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 工时条目创建数
	entriesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Total number of time entries created",
		},
	)

	// 提交批次数与条目数
	submissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of submission batches",
		},
	)

	submittedEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submitted_entries_total",
			Help:      "Total number of time entries moved to submitted",
		},
	)

	// 审批决定数
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of approval decisions per entry",
		},
		[]string{"decision"}, // approve, reject
	)

	// 状态冲突数
	conflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Total number of operations rejected with a conflict",
		},
		[]string{"operation"},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections_active",
			Help:      "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections_idle",
			Help:      "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections_max",
			Help:      "Maximum number of database connections",
		},
	)

	// 工时条目状态分布
	entriesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries_by_state",
			Help:      "Number of time entries by state",
		},
		[]string{"state"},
	)
)

var (
	once sync.Once
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(entriesCreatedTotal)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(submittedEntriesTotal)
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(conflictsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(entriesByState)

	// Go 运行时指标只注册一次,已注册时忽略错误
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordEntryCreated 记录工时条目创建
func RecordEntryCreated() {
	entriesCreatedTotal.Inc()
}

// RecordSubmission 记录一次提交及其条目数
func RecordSubmission(entries int) {
	submissionsTotal.Inc()
	submittedEntriesTotal.Add(float64(entries))
}

// RecordDecision 记录审批决定
func RecordDecision(decision string, entries int) {
	decisionsTotal.WithLabelValues(decision).Add(float64(entries))
}

// RecordConflict 记录状态冲突
func RecordConflict(operation string) {
	conflictsTotal.WithLabelValues(operation).Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateEntriesByState 更新工时条目状态分布指标
func UpdateEntriesByState(state string, count float64) {
	entriesByState.WithLabelValues(state).Set(count)
}
