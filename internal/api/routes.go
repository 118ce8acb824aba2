package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/service"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config     *config.Config
	DB         *gorm.DB
	Validator  *auth.TokenValidator // auth.mode=jwt 时必需
	Identities *auth.IdentityCache

	Directory   service.DirectoryService
	Entries     service.EntryService
	Submissions service.SubmissionService
	Approvals   service.ApprovalService
	Queries     service.QueryService
	Statistics  service.StatisticsService
}

// SetupRoutes 配置路由
func SetupRoutes(deps *RouterDeps) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// 中间件
	router.Use(gin.Recovery())
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware(cfg.Tracing.ServiceName))
	}
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.CORS))
	if cfg.RateLimit.Enabled {
		router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	router.Use(ErrorHandlerMiddleware())

	// 健康检查
	healthController := NewHealthController(deps.DB)
	router.GET("/health", healthController.Check)
	router.GET("/healthz", healthController.Healthz)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	directoryController := NewDirectoryController(deps.Directory, deps.Identities)
	entryController := NewEntryController(deps.Entries, deps.Queries)
	workflowController := NewWorkflowController(deps.Submissions, deps.Approvals)
	queryController := NewQueryController(deps.Queries, deps.Statistics)

	adminOnly := auth.RequireRole(model.RoleAdmin)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	v1.Use(VersionMiddleware())
	v1.Use(auth.IdentityMiddleware(cfg.Auth.Mode, deps.Validator, deps.Directory, deps.Identities))
	{
		// 用户管理路由
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", directoryController.CreateUser)
			users.GET("", directoryController.ListUsers)
			users.GET("/:id", directoryController.GetUser)
			users.PUT("/:id", directoryController.UpdateUser)
			users.DELETE("/:id", directoryController.DeleteUser)
		}

		// 客户管理路由
		clients := v1.Group("/clients", adminOnly)
		{
			clients.POST("", directoryController.CreateClient)
			clients.GET("", directoryController.ListClients)
			clients.GET("/:id", directoryController.GetClient)
			clients.PUT("/:id", directoryController.UpdateClient)
			clients.DELETE("/:id", directoryController.DeleteClient)
		}

		// 项目管理路由
		projects := v1.Group("/projects", adminOnly)
		{
			projects.POST("", directoryController.CreateProject)
			projects.GET("", directoryController.ListProjects)
			projects.GET("/:id", directoryController.GetProject)
			projects.PUT("/:id", directoryController.UpdateProject)
			projects.DELETE("/:id", directoryController.DeleteProject)
			projects.POST("/:id/tasks", directoryController.CreateTask)
			projects.POST("/:id/assignments", directoryController.Assign)
			projects.GET("/:id/assignments", directoryController.ListAssignments)
			projects.DELETE("/:id/assignments/:user_id", directoryController.Unassign)
		}
		// 项目任务对所有用户可读
		v1.GET("/projects/:id/tasks", directoryController.ListTasks)

		// 任务管理路由
		tasks := v1.Group("/tasks")
		{
			tasks.GET("/:id", directoryController.GetTask)
			tasks.PUT("/:id", adminOnly, directoryController.UpdateTask)
			tasks.DELETE("/:id", adminOnly, directoryController.DeleteTask)
		}

		// 工时条目路由
		entries := v1.Group("/entries")
		{
			entries.POST("", entryController.Create)
			entries.GET("", entryController.List)
			entries.GET("/:id", entryController.Get)
			entries.PUT("/:id", entryController.Update)
			entries.DELETE("/:id", entryController.Delete)
			entries.POST("/:id/resubmit", entryController.Resubmit)
			entries.GET("/:id/approvals", entryController.GetApprovals)
			entries.GET("/:id/history", entryController.GetHistory)
			entries.POST("/:id/decision", workflowController.DecideEntry)
		}

		// 提交与审批路由
		v1.POST("/submissions", workflowController.Submit)
		v1.POST("/submissions/week", workflowController.SubmitWeek)
		v1.GET("/approvals/pending", workflowController.Pending)
		v1.POST("/batches/:batch_id/decision", workflowController.DecideBatch)

		// 周视图
		v1.GET("/weeks/:year/:week", queryController.Week)

		// 统计路由
		statistics := v1.Group("/statistics", auth.RequireRole(model.RoleAdmin, model.RoleLead, model.RoleFinance, model.RoleReadOnly))
		{
			statistics.GET("/entries", queryController.EntryStatistics)
			statistics.GET("/projects", queryController.ProjectStatistics)
			statistics.GET("/approvals", queryController.ApprovalStatistics)
		}
	}

	// 未匹配的路由返回 JSON 格式的 404
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
