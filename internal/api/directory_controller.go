package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/service"
)

// DirectoryController 用户、客户、项目、任务和项目成员控制器
type DirectoryController struct {
	directory  service.DirectoryService
	identities *auth.IdentityCache
}

// NewDirectoryController 创建目录控制器
func NewDirectoryController(directory service.DirectoryService, identities *auth.IdentityCache) *DirectoryController {
	return &DirectoryController{
		directory:  directory,
		identities: identities,
	}
}

// CreateUser 创建用户
func (c *DirectoryController) CreateUser(ctx *gin.Context) {
	var in service.UserInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	user, err := c.directory.CreateUser(requestContext(ctx), &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, user)
}

// ListUsers 列出用户
func (c *DirectoryController) ListUsers(ctx *gin.Context) {
	users, err := c.directory.ListUsers(requestContext(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, users)
}

// GetUser 获取用户
func (c *DirectoryController) GetUser(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	user, err := c.directory.GetUser(requestContext(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, user)
}

// UpdateUser 更新用户,角色或启用状态的变化立即对身份缓存生效
func (c *DirectoryController) UpdateUser(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.UserInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	user, err := c.directory.UpdateUser(requestContext(ctx), id, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	c.identities.Invalidate(id)
	Success(ctx, user)
}

// DeleteUser 删除用户
func (c *DirectoryController) DeleteUser(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.directory.DeleteUser(requestContext(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}
	c.identities.Invalidate(id)
	ctx.Status(http.StatusNoContent)
}

// CreateClient 创建客户
func (c *DirectoryController) CreateClient(ctx *gin.Context) {
	var in service.ClientInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	client, err := c.directory.CreateClient(requestContext(ctx), &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, client)
}

// ListClients 列出客户
func (c *DirectoryController) ListClients(ctx *gin.Context) {
	clients, err := c.directory.ListClients(requestContext(ctx))
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, clients)
}

// GetClient 获取客户
func (c *DirectoryController) GetClient(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	client, err := c.directory.GetClient(requestContext(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, client)
}

// UpdateClient 更新客户
func (c *DirectoryController) UpdateClient(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.ClientInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	client, err := c.directory.UpdateClient(requestContext(ctx), id, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, client)
}

// DeleteClient 删除客户
func (c *DirectoryController) DeleteClient(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.directory.DeleteClient(requestContext(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateProject 创建项目
func (c *DirectoryController) CreateProject(ctx *gin.Context) {
	var in service.ProjectInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	project, err := c.directory.CreateProject(requestContext(ctx), &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, project)
}

// ListProjects 列出项目,支持 client_id 和 status 过滤
func (c *DirectoryController) ListProjects(ctx *gin.Context) {
	clientID, err := queryInt64(ctx, "client_id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	filter := &repository.ProjectFilter{ClientID: clientID}
	if raw := queryString(ctx, "status"); raw != nil {
		status := model.ProjectStatus(*raw)
		filter.Status = &status
	}

	projects, err := c.directory.ListProjects(requestContext(ctx), filter)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, projects)
}

// GetProject 获取项目
func (c *DirectoryController) GetProject(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	project, err := c.directory.GetProject(requestContext(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, project)
}

// UpdateProject 更新项目
func (c *DirectoryController) UpdateProject(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.ProjectInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	project, err := c.directory.UpdateProject(requestContext(ctx), id, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, project)
}

// DeleteProject 删除项目
func (c *DirectoryController) DeleteProject(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.directory.DeleteProject(requestContext(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateTask 在项目下创建任务
func (c *DirectoryController) CreateTask(ctx *gin.Context) {
	projectID, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.TaskInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	task, err := c.directory.CreateTask(requestContext(ctx), projectID, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, task)
}

// ListTasks 列出项目的任务
func (c *DirectoryController) ListTasks(ctx *gin.Context) {
	projectID, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	tasks, err := c.directory.ListTasks(requestContext(ctx), projectID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, tasks)
}

// GetTask 获取任务
func (c *DirectoryController) GetTask(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	task, err := c.directory.GetTask(requestContext(ctx), id)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, task)
}

// UpdateTask 更新任务
func (c *DirectoryController) UpdateTask(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var in service.TaskInput
	if err := bindJSON(ctx, &in); err != nil {
		HandleError(ctx, err)
		return
	}
	task, err := c.directory.UpdateTask(requestContext(ctx), id, &in)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, task)
}

// DeleteTask 删除任务,引用该任务的条目保留并清空 task_id
func (c *DirectoryController) DeleteTask(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.directory.DeleteTask(requestContext(ctx), id); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AssignRequest 分配项目成员请求
type AssignRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// Assign 将用户分配到项目
func (c *DirectoryController) Assign(ctx *gin.Context) {
	projectID, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	var req AssignRequest
	if err := bindJSON(ctx, &req); err != nil {
		HandleError(ctx, err)
		return
	}
	assignment, err := c.directory.Assign(requestContext(ctx), projectID, req.UserID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Created(ctx, assignment)
}

// ListAssignments 列出项目成员
func (c *DirectoryController) ListAssignments(ctx *gin.Context) {
	projectID, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	assignments, err := c.directory.ListAssignments(requestContext(ctx), projectID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	Success(ctx, assignments)
}

// Unassign 取消项目成员分配,已记录的工时不受影响
func (c *DirectoryController) Unassign(ctx *gin.Context) {
	projectID, err := pathID(ctx, "id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		HandleError(ctx, err)
		return
	}
	if err := c.directory.Unassign(requestContext(ctx), projectID, userID); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
