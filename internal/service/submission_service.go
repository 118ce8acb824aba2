package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/database"
	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// SubmissionService 提交批次服务
type SubmissionService interface {
	Submit(ctx context.Context, userID int64, entryIDs []int64) (*SubmissionResult, error)
	SubmitWeek(ctx context.Context, userID int64, year, week int) (*SubmissionResult, error)
}

// SubmissionResult 提交结果
type SubmissionResult struct {
	BatchID string                  `json:"submit_batch_id"`
	Entries []*model.TimeEntryModel `json:"entries"`
}

type submissionService struct {
	db           *gorm.DB
	lockTimeout  time.Duration
	maxBatchSize int
	entries      repository.TimeEntryRepository
	history      repository.StateHistoryRepository
	auditLogSvc  AuditLogService
}

// NewSubmissionService 创建提交批次服务
func NewSubmissionService(db *gorm.DB, cfg config.WorkflowConfig, auditLogSvc AuditLogService) SubmissionService {
	return &submissionService{
		db:           db,
		lockTimeout:  cfg.LockTimeout,
		maxBatchSize: cfg.MaxBatchSize,
		entries:      repository.NewTimeEntryRepository(db),
		history:      repository.NewStateHistoryRepository(db),
		auditLogSvc:  auditLogSvc,
	}
}

// dedupeIDs 去重并升序排列,保证加锁顺序一致
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Submit 将用户的一组草稿原子地提交为一个批次
//
// 任何一个条目不满足条件(不存在、不属于该用户、不是草稿)时整批失败,
// 所有条目保持原状。
func (s *submissionService) Submit(ctx context.Context, userID int64, entryIDs []int64) (*SubmissionResult, error) {
	ids := dedupeIDs(entryIDs)
	if len(ids) == 0 {
		return nil, apperror.Validation("entry_ids", "at least one entry is required")
	}
	if s.maxBatchSize > 0 && len(ids) > s.maxBatchSize {
		return nil, apperror.Validation("entry_ids", "a batch may contain at most %d entries", s.maxBatchSize)
	}

	batchID := uuid.New().String()
	now := time.Now().UTC()
	var submitted []*model.TimeEntryModel

	ctx, span := startSpan(ctx, "timesheet.submit",
		attribute.Int64("user_id", userID),
		attribute.String("submit_batch_id", batchID),
		attribute.Int("entries", len(ids)),
	)
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		entries := s.entries.WithTx(tx)
		history := s.history.WithTx(tx)

		found, err := entries.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]*model.TimeEntryModel, len(found))
		for _, e := range found {
			byID[e.ID] = e
		}

		// 1. 先校验全部成员,再执行任何变更
		for _, id := range ids {
			e, ok := byID[id]
			if !ok {
				return apperror.EntryNotFound(id)
			}
			if e.UserID != userID {
				return apperror.Conflict("entry does not belong to user %d", userID).WithEntry(id)
			}
			if e.State != statemachine.Draft {
				return apperror.Conflict("entry is %s, only drafts can be submitted", e.State).WithEntry(id)
			}
		}

		// 2. 逐条条件更新,任何一条失败都会回滚整个事务
		for _, id := range ids {
			e := byID[id]
			if err := applyTransition(ctx, entries, history, transitionStep{
				entry:    e,
				action:   statemachine.ActionSubmit,
				operator: userID,
				reason:   "submitted",
				batchID:  &batchID,
				at:       now,
			}); err != nil {
				return err
			}
			submitted = append(submitted, e)
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, conflictMetric("submit", err)
	}

	metrics.RecordSubmission(len(submitted))
	logrus.WithFields(logrus.Fields{
		"user_id":         userID,
		"submit_batch_id": batchID,
		"entries":         len(submitted),
	}).Info("time entries submitted")
	recordAudit(ctx, s.auditLogSvc, userID, "submit", "batch", batchID, map[string]interface{}{"entry_ids": ids})

	return &SubmissionResult{BatchID: batchID, Entries: submitted}, nil
}

// SubmitWeek 提交用户在某个 ISO 周内的全部草稿
func (s *submissionService) SubmitWeek(ctx context.Context, userID int64, year, week int) (*SubmissionResult, error) {
	days, err := ISOWeekDays(year, week)
	if err != nil {
		return nil, err
	}

	draft := statemachine.Draft
	drafts, err := s.entries.FindByUserInRange(ctx, userID, days[0], days[6], &draft)
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}
	if len(drafts) == 0 {
		return nil, apperror.Validation("week", "no draft entries in ISO week %d-W%02d", year, week)
	}

	ids := make([]int64, 0, len(drafts))
	for _, e := range drafts {
		ids = append(ids, e.ID)
	}
	return s.Submit(ctx, userID, ids)
}
