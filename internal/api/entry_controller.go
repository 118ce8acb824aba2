package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/service"
)

// maxPageSize 单页最大条目数
const maxPageSize = 100

// EntryController 工时条目控制器
type EntryController struct {
	entryService service.EntryService
	queryService service.QueryService
}

// NewEntryController 创建工时条目控制器
func NewEntryController(entryService service.EntryService, queryService service.QueryService) *EntryController {
	return &EntryController{
		entryService: entryService,
		queryService: queryService,
	}
}

// Create 为当前用户创建草稿
func (c *EntryController) Create(ctx *gin.Context) {
	var in service.EntryInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	entry, err := c.entryService.Create(requestContext(ctx), currentUser(ctx), &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, entry)
}

// List 分页查询工时条目
//
// 支持 user_id、project_id、state、batch_id、from、to 过滤,
// 以及 page、page_size、sort_by、order。
func (c *EntryController) List(ctx *gin.Context) {
	var filter service.ListEntriesFilter
	var err error
	if filter.UserID, err = queryInt64(ctx, "user_id"); err != nil {
		HandleError(ctx, err)
		return
	}
	if filter.ProjectID, err = queryInt64(ctx, "project_id"); err != nil {
		HandleError(ctx, err)
		return
	}
	filter.State = queryString(ctx, "state")
	filter.BatchID = queryString(ctx, "batch_id")
	filter.From = queryString(ctx, "from")
	filter.To = queryString(ctx, "to")
	filter.SortBy = ctx.Query("sort_by")
	filter.Order = ctx.Query("order")

	page, err := queryInt64(ctx, "page")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	pageSize, err := queryInt64(ctx, "page_size")
	if err != nil {
		HandleError(ctx, err)
		return
	}

	// 设置默认值
	filter.Page = 1
	if page != nil && *page > 0 {
		filter.Page = int(*page)
	}
	filter.PageSize = 20
	if pageSize != nil && *pageSize > 0 {
		filter.PageSize = int(*pageSize)
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	entries, total, err := c.queryService.ListEntries(requestContext(ctx), currentUser(ctx), &filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Paginated(ctx, entries, NewPaginationInfo(filter.Page, filter.PageSize, total))
}

// Get 获取工时条目
func (c *EntryController) Get(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	entry, err := c.queryService.GetEntry(requestContext(ctx), currentUser(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, entry)
}

// Update 编辑草稿
func (c *EntryController) Update(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.EntryInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	entry, err := c.entryService.Update(requestContext(ctx), currentUser(ctx), id, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, entry)
}

// Delete 删除从未被审批过的草稿
func (c *EntryController) Delete(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.entryService.Delete(requestContext(ctx), currentUser(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Resubmit 将被驳回的条目重新打开为草稿
func (c *EntryController) Resubmit(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	entry, err := c.entryService.Resubmit(requestContext(ctx), currentUser(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, entry)
}

// GetApprovals 获取条目的审批记录
func (c *EntryController) GetApprovals(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	approvals, err := c.queryService.GetApprovals(requestContext(ctx), currentUser(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, approvals)
}

// GetHistory 获取条目的状态历史
func (c *EntryController) GetHistory(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	history, err := c.queryService.GetHistory(requestContext(ctx), currentUser(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, history)
}
