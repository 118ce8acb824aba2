package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/service"
)

// QueryController 周视图与统计控制器
type QueryController struct {
	queryService      service.QueryService
	statisticsService service.StatisticsService
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService, statisticsService service.StatisticsService) *QueryController {
	return &QueryController{
		queryService:      queryService,
		statisticsService: statisticsService,
	}
}

// Week 获取 ISO 周视图,默认当前用户,审批角色可以通过 user_id 查看他人
func (c *QueryController) Week(ctx *gin.Context) {
	year, err := strconv.Atoi(ctx.Param("year"))
	if err != nil {
		HandleError(ctx, apperror.Validation("year", "must be an integer"))
		return
	}
	week, err := strconv.Atoi(ctx.Param("week"))
	if err != nil {
		HandleError(ctx, apperror.Validation("week", "must be an integer"))
		return
	}

	viewerID := currentUser(ctx)
	userID := viewerID
	requested, err := queryInt64(ctx, "user_id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if requested != nil {
		userID = *requested
	}

	view, err := c.queryService.WeekView(requestContext(ctx), viewerID, userID, year, week)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, view)
}

// EntryStatistics 按状态统计工时条目
func (c *QueryController) EntryStatistics(ctx *gin.Context) {
	stats, err := c.statisticsService.GetEntryStatisticsByState(requestContext(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// ProjectStatistics 按项目和状态汇总工时
func (c *QueryController) ProjectStatistics(ctx *gin.Context) {
	stats, err := c.statisticsService.GetHoursByProject(requestContext(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}

// ApprovalStatistics 审批统计
func (c *QueryController) ApprovalStatistics(ctx *gin.Context) {
	stats, err := c.statisticsService.GetApprovalStatistics(requestContext(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, stats)
}
