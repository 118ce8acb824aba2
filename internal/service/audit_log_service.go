package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/sirupsen/logrus"
)

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, userID int64, action string, resourceType string, resourceID string, details interface{}) error
	ListByResource(ctx context.Context, resourceType string, resourceID int64) ([]*model.AuditLogModel, error)
}

// auditLogService 审计日志服务实现
type auditLogService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID int64,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	info := RequestInfoFromContext(ctx)
	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    info.RequestID,
		IP:           info.IP,
		UserAgent:    info.UserAgent,
		Details:      string(detailsJSON),
		CreatedAt:    time.Now().UTC(),
	}

	return s.auditRepo.Save(ctx, auditLog)
}

// ListByResource 查询某个资源的审计日志
func (s *auditLogService) ListByResource(ctx context.Context, resourceType string, resourceID int64) ([]*model.AuditLogModel, error) {
	return s.auditRepo.FindByResource(ctx, resourceType, idString(resourceID))
}

// recordAudit 事务提交后尽力写入审计日志,失败只记录警告
func recordAudit(ctx context.Context, svc AuditLogService, userID int64, action, resourceType, resourceID string, details interface{}) {
	if svc == nil || userID == 0 {
		return
	}
	if err := svc.RecordAction(ctx, userID, action, resourceType, resourceID, details); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":        action,
			"resource_type": resourceType,
			"resource_id":   resourceID,
		}).Warn("failed to record audit log")
	}
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
