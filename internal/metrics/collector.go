package metrics

import (
	"context"
	"time"

	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StateCounter 提供按状态统计的工时条目数
type StateCounter interface {
	CountByState(ctx context.Context) (map[statemachine.State]int64, error)
}

// Collector 指标收集器
type Collector struct {
	db       *gorm.DB
	counter  StateCounter
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, counter StateCounter, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		counter:  counter,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// CollectOnce 立即采集一次
func (c *Collector) CollectOnce(ctx context.Context) {
	if err := UpdateDatabaseConnections(c.db); err != nil {
		logrus.WithError(err).Debug("failed to collect database pool metrics")
	}
	if c.counter == nil {
		return
	}
	counts, err := c.counter.CountByState(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to collect entry state metrics")
		return
	}
	for state, count := range counts {
		UpdateEntriesByState(string(state), float64(count))
	}
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	c.CollectOnce(c.ctx)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce(c.ctx)
		}
	}
}
