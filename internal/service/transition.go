package service

import (
	"context"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/statemachine"
)

// transitionStep 一次条目状态变更的参数
type transitionStep struct {
	entry      *model.TimeEntryModel
	action     statemachine.Action
	operator   int64
	reason     string
	batchID    *string
	clearBatch bool
	at         time.Time
}

// applyTransition 在调用方事务内执行条件状态变更并追加状态历史
//
// entries 和 history 必须绑定到同一个事务。
func applyTransition(ctx context.Context, entries repository.TimeEntryRepository, history repository.StateHistoryRepository, step transitionStep) error {
	entry := step.entry
	to, err := statemachine.Next(entry.State, step.action)
	if err != nil {
		return apperror.Wrap(apperror.KindConflict, err, "illegal state transition").WithEntry(entry.ID)
	}

	ok, err := entries.Transition(ctx, &repository.Transition{
		ID:         entry.ID,
		From:       entry.State,
		Version:    entry.Version,
		To:         to,
		BatchID:    step.batchID,
		ClearBatch: step.clearBatch,
		At:         step.at,
	})
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Conflict("entry was modified concurrently").WithEntry(entry.ID)
	}

	if err := history.Save(ctx, &model.StateHistoryModel{
		TimeEntryID:   entry.ID,
		FromState:     entry.State,
		ToState:       to,
		Reason:        step.reason,
		SubmitBatchID: batchForHistory(entry, step),
		Operator:      step.operator,
		CreatedAt:     step.at,
	}); err != nil {
		return err
	}

	entry.State = to
	entry.Version++
	entry.UpdatedAt = step.at
	switch {
	case step.batchID != nil:
		entry.SubmitBatchID = step.batchID
	case step.clearBatch:
		entry.SubmitBatchID = nil
	}
	return nil
}

func batchForHistory(entry *model.TimeEntryModel, step transitionStep) *string {
	if step.batchID != nil {
		return step.batchID
	}
	return entry.SubmitBatchID
}

// conflictMetric 冲突错误计入指标
func conflictMetric(operation string, err error) error {
	if apperror.Is(err, apperror.KindConflict) {
		metrics.RecordConflict(operation)
	}
	return err
}
