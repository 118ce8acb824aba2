package service

import (
	"context"
	"fmt"
	"sort"
	"time"

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

// ApprovalService 审批服务
type ApprovalService interface {
	Decide(ctx context.Context, approverID, entryID int64, decision model.Decision, comment *string) (*DecisionResult, error)
	DecideBatch(ctx context.Context, approverID int64, batchID string, decision model.Decision, comment *string) (*DecisionResult, error)
	PendingForApprover(ctx context.Context, approverID int64) ([]*PendingBatch, error)
}

// DecisionResult 审批结果
type DecisionResult struct {
	Decision  model.Decision          `json:"decision"`
	Entries   []*model.TimeEntryModel `json:"entries"`
	Approvals []*model.ApprovalModel  `json:"approvals"`
}

// PendingBatch 同一批次的待审批条目
type PendingBatch struct {
	BatchID string                  `json:"submit_batch_id"`
	UserID  int64                   `json:"user_id"`
	Hours   string                  `json:"hours"`
	Entries []*model.TimeEntryModel `json:"entries"`
}

type approvalService struct {
	db          *gorm.DB
	lockTimeout time.Duration
	directory   DirectoryLookup
	entries     repository.TimeEntryRepository
	approvals   repository.ApprovalRepository
	history     repository.StateHistoryRepository
	auditLogSvc AuditLogService
}

// NewApprovalService 创建审批服务
func NewApprovalService(db *gorm.DB, cfg config.WorkflowConfig, directory DirectoryLookup, auditLogSvc AuditLogService) ApprovalService {
	return &approvalService{
		db:          db,
		lockTimeout: cfg.LockTimeout,
		directory:   directory,
		entries:     repository.NewTimeEntryRepository(db),
		approvals:   repository.NewApprovalRepository(db),
		history:     repository.NewStateHistoryRepository(db),
		auditLogSvc: auditLogSvc,
	}
}

func decisionAction(decision model.Decision) (statemachine.Action, error) {
	switch decision {
	case model.DecisionApprove:
		return statemachine.ActionApprove, nil
	case model.DecisionReject:
		return statemachine.ActionReject, nil
	}
	return "", apperror.Validation("decision", "must be approve or reject, got %q", decision)
}

// loadApprover 审批人必须存在且启用
func (s *approvalService) loadApprover(ctx context.Context, approverID int64) (*model.UserModel, error) {
	approver, err := s.directory.GetUser(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.Active {
		return nil, apperror.Forbidden("approver %d is inactive", approverID)
	}
	return approver, nil
}

// canDecide 审批人具备审批角色或是项目指定审批人,且不能审批自己的条目
func (s *approvalService) canDecide(ctx context.Context, approver *model.UserModel, entry *model.TimeEntryModel) error {
	if entry.UserID == approver.ID {
		return apperror.Forbidden("self-approval is not allowed").WithEntry(entry.ID)
	}
	if approver.Role.CanDecide() {
		return nil
	}
	designated, err := s.directory.ProjectApprover(ctx, entry.ProjectID)
	if err != nil {
		return err
	}
	if designated != nil && *designated == approver.ID {
		return nil
	}
	return apperror.Forbidden("user %d may not decide entries of project %d", approver.ID, entry.ProjectID).WithEntry(entry.ID)
}

// Decide 对单个已提交条目做出审批决定
func (s *approvalService) Decide(ctx context.Context, approverID, entryID int64, decision model.Decision, comment *string) (*DecisionResult, error) {
	action, err := decisionAction(decision)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperror.EntryNotFound(entryID)
		}
		return nil, fmt.Errorf("failed to load time entry: %w", err)
	}
	approver, err := s.loadApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if err := s.canDecide(ctx, approver, entry); err != nil {
		return nil, err
	}
	if entry.State != statemachine.Submitted {
		return nil, conflictMetric("decide", apperror.Conflict("entry is %s, only submitted entries can be decided", entry.State).WithEntry(entryID))
	}

	result, err := s.decideAll(ctx, approverID, []*model.TimeEntryModel{entry}, decision, action, comment)
	if err != nil {
		return nil, conflictMetric("decide", err)
	}

	recordAudit(ctx, s.auditLogSvc, approverID, string(decision), "entry", idString(entryID), map[string]interface{}{"comment": comment})
	return result, nil
}

// DecideBatch 对同一提交批次的全部条目做出相同的审批决定
//
// 任一条目已离开 submitted 状态时整批失败,不产生任何变更。
func (s *approvalService) DecideBatch(ctx context.Context, approverID int64, batchID string, decision model.Decision, comment *string) (*DecisionResult, error) {
	action, err := decisionAction(decision)
	if err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, apperror.Validation("batch_id", "is required")
	}

	members, err := s.entries.FindByBatchID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	if len(members) == 0 {
		return nil, apperror.NotFound("submit batch", batchID)
	}
	approver, err := s.loadApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	for _, e := range members {
		if err := s.canDecide(ctx, approver, e); err != nil {
			return nil, err
		}
	}
	for _, e := range members {
		if e.State != statemachine.Submitted {
			return nil, conflictMetric("decide_batch", apperror.Conflict("batch member is %s, only submitted entries can be decided", e.State).WithEntry(e.ID))
		}
	}

	result, err := s.decideAll(ctx, approverID, members, decision, action, comment)
	if err != nil {
		return nil, conflictMetric("decide_batch", err)
	}

	recordAudit(ctx, s.auditLogSvc, approverID, string(decision), "batch", batchID, map[string]interface{}{
		"entries": len(members),
		"comment": comment,
	})
	return result, nil
}

// decideAll 在一个事务中对全部条目执行状态变更并追加审批记录
func (s *approvalService) decideAll(ctx context.Context, approverID int64, members []*model.TimeEntryModel, decision model.Decision, action statemachine.Action, comment *string) (*DecisionResult, error) {
	now := time.Now().UTC()
	result := &DecisionResult{Decision: decision}
	reason := string(decision)
	if comment != nil && *comment != "" {
		reason = *comment
	}

	ctx, span := startSpan(ctx, "timesheet.decide",
		attribute.Int64("approver_id", approverID),
		attribute.String("decision", string(decision)),
		attribute.Int("entries", len(members)),
	)
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		entries := s.entries.WithTx(tx)
		approvals := s.approvals.WithTx(tx)
		history := s.history.WithTx(tx)

		for _, e := range members {
			if err := applyTransition(ctx, entries, history, transitionStep{
				entry:    e,
				action:   action,
				operator: approverID,
				reason:   reason,
				at:       now,
			}); err != nil {
				return err
			}
			approval := &model.ApprovalModel{
				TimeEntryID:    e.ID,
				ApproverUserID: approverID,
				Decision:       decision,
				Comment:        comment,
				DecidedAt:      now,
			}
			if err := approvals.Append(ctx, approval); err != nil {
				return err
			}
			result.Entries = append(result.Entries, e)
			result.Approvals = append(result.Approvals, approval)
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(decision), len(members))
	logrus.WithFields(logrus.Fields{
		"approver_id": approverID,
		"decision":    decision,
		"entries":     len(members),
	}).Info("approval decision recorded")
	return result, nil
}

// PendingForApprover 列出审批人可以处理的已提交条目,按批次分组
func (s *approvalService) PendingForApprover(ctx context.Context, approverID int64) ([]*PendingBatch, error) {
	approver, err := s.loadApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}

	submitted, err := s.entries.FindSubmitted(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitted entries: %w", err)
	}

	approverOf := make(map[int64]bool)
	batches := make(map[string]*PendingBatch)
	var order []string
	for _, e := range submitted {
		if !approver.Role.CanDecide() {
			allowed, ok := approverOf[e.ProjectID]
			if !ok {
				designated, err := s.directory.ProjectApprover(ctx, e.ProjectID)
				if err != nil {
					return nil, err
				}
				allowed = designated != nil && *designated == approverID
				approverOf[e.ProjectID] = allowed
			}
			if !allowed {
				continue
			}
		}

		key := ""
		if e.SubmitBatchID != nil {
			key = *e.SubmitBatchID
		}
		batch, ok := batches[key]
		if !ok {
			batch = &PendingBatch{BatchID: key, UserID: e.UserID}
			batches[key] = batch
			order = append(order, key)
		}
		batch.Entries = append(batch.Entries, e)
	}

	sort.Strings(order)
	result := make([]*PendingBatch, 0, len(order))
	for _, key := range order {
		batch := batches[key]
		batch.Hours = sumHours(batch.Entries).StringFixed(2)
		result = append(result, batch)
	}
	return result, nil
}
