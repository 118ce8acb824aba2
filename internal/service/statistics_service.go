package service

import (
	"context"
	"fmt"

	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsService 统计服务接口
type StatisticsService interface {
	GetEntryStatisticsByState(ctx context.Context) ([]*EntryStatisticsByState, error)
	GetHoursByProject(ctx context.Context) ([]*HoursByProject, error)
	GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error)
}

// EntryStatisticsByState 按状态统计
type EntryStatisticsByState struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// HoursByProject 按项目汇总工时
type HoursByProject struct {
	ProjectID   int64  `json:"project_id"`
	ProjectCode string `json:"project_code"`
	State       string `json:"state"`
	Hours       string `json:"hours"`
}

// ApprovalStatistics 审批统计
type ApprovalStatistics struct {
	TotalDecisions int64   `json:"total_decisions"`
	ApprovedCount  int64   `json:"approved_count"`
	RejectedCount  int64   `json:"rejected_count"`
	ApprovalRate   float64 `json:"approval_rate"`
}

// statisticsService 统计服务实现
type statisticsService struct {
	db      *gorm.DB
	entries repository.TimeEntryRepository
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{
		db:      db,
		entries: repository.NewTimeEntryRepository(db),
	}
}

// GetEntryStatisticsByState 按状态统计工时条目,四种状态全部返回
func (s *statisticsService) GetEntryStatisticsByState(ctx context.Context) ([]*EntryStatisticsByState, error) {
	counts, err := s.entries.CountByState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry statistics by state: %w", err)
	}

	stats := make([]*EntryStatisticsByState, 0, len(statemachine.States))
	for _, state := range statemachine.States {
		stats = append(stats, &EntryStatisticsByState{
			State: string(state),
			Count: counts[state],
		})
	}
	return stats, nil
}

// GetHoursByProject 按项目和状态汇总工时
func (s *statisticsService) GetHoursByProject(ctx context.Context) ([]*HoursByProject, error) {
	var results []struct {
		ProjectID   int64
		ProjectCode string
		State       string
		Hours       decimal.Decimal
	}

	err := s.db.WithContext(ctx).Model(&model.TimeEntryModel{}).
		Select("time_entries.project_id, projects.code AS project_code, time_entries.state, SUM(time_entries.hours) AS hours").
		Joins("JOIN projects ON projects.id = time_entries.project_id").
		Group("time_entries.project_id, projects.code, time_entries.state").
		Order("projects.code, time_entries.state").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get hours by project: %w", err)
	}

	stats := make([]*HoursByProject, 0, len(results))
	for _, r := range results {
		stats = append(stats, &HoursByProject{
			ProjectID:   r.ProjectID,
			ProjectCode: r.ProjectCode,
			State:       r.State,
			Hours:       r.Hours.StringFixed(2),
		})
	}
	return stats, nil
}

// GetApprovalStatistics 获取审批统计
func (s *statisticsService) GetApprovalStatistics(ctx context.Context) (*ApprovalStatistics, error) {
	var results []struct {
		Decision string
		Count    int64
	}
	err := s.db.WithContext(ctx).Model(&model.ApprovalModel{}).
		Select("decision, COUNT(*) AS count").
		Group("decision").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count approvals: %w", err)
	}

	stats := &ApprovalStatistics{}
	for _, r := range results {
		stats.TotalDecisions += r.Count
		switch model.Decision(r.Decision) {
		case model.DecisionApprove:
			stats.ApprovedCount = r.Count
		case model.DecisionReject:
			stats.RejectedCount = r.Count
		}
	}
	if stats.TotalDecisions > 0 {
		stats.ApprovalRate = float64(stats.ApprovedCount) / float64(stats.TotalDecisions) * 100
	}
	return stats, nil
}
