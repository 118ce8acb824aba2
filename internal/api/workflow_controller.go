package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/service"
)

// WorkflowController 提交与审批控制器
type WorkflowController struct {
	submissionService service.SubmissionService
	approvalService   service.ApprovalService
}

// NewWorkflowController 创建提交与审批控制器
func NewWorkflowController(submissionService service.SubmissionService, approvalService service.ApprovalService) *WorkflowController {
	return &WorkflowController{
		submissionService: submissionService,
		approvalService:   approvalService,
	}
}

// SubmitRequest 提交批次请求
type SubmitRequest struct {
	EntryIDs []int64 `json:"entry_ids"`
}

// SubmitWeekRequest 按 ISO 周提交请求
type SubmitWeekRequest struct {
	Year int `json:"year" binding:"required"`
	Week int `json:"week" binding:"required"`
}

// DecisionRequest 审批请求
type DecisionRequest struct {
	Decision model.Decision `json:"decision" binding:"required"`
	Comment  *string        `json:"comment"`
}

// Submit 将当前用户的一组草稿提交为一个批次
func (c *WorkflowController) Submit(ctx *gin.Context) {
	var req SubmitRequest
	if err := bindJSON(ctx, &req); err != nil {
		HandleError(ctx, err)
		return
	}
	result, err := c.submissionService.Submit(requestContext(ctx), currentUser(ctx), req.EntryIDs)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, result)
}

// SubmitWeek 提交当前用户某个 ISO 周的全部草稿
func (c *WorkflowController) SubmitWeek(ctx *gin.Context) {
	var req SubmitWeekRequest
	if err := bindJSON(ctx, &req); err != nil {
		HandleError(ctx, err)
		return
	}
	result, err := c.submissionService.SubmitWeek(requestContext(ctx), currentUser(ctx), req.Year, req.Week)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, result)
}

// Pending 列出当前用户可以审批的已提交条目
func (c *WorkflowController) Pending(ctx *gin.Context) {
	batches, err := c.approvalService.PendingForApprover(requestContext(ctx), currentUser(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, batches)
}

// DecideEntry 审批单个条目
func (c *WorkflowController) DecideEntry(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var req DecisionRequest
	if err := bindJSON(ctx, &req); err != nil {
		HandleError(ctx, err)
		return
	}
	result, err := c.approvalService.Decide(requestContext(ctx), currentUser(ctx), id, req.Decision, req.Comment)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, result)
}

// DecideBatch 审批整个提交批次
func (c *WorkflowController) DecideBatch(ctx *gin.Context) {
	var req DecisionRequest
	if err := bindJSON(ctx, &req); err != nil {
		HandleError(ctx, err)
		return
	}
	result, err := c.approvalService.DecideBatch(requestContext(ctx), currentUser(ctx), ctx.Param("batch_id"), req.Decision, req.Comment)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, result)
}
