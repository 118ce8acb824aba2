package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/database"
	"github.com/mautops/timesheet-gin/internal/model"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxBudgetHours numeric(8,2) 能表示的上限(不含)
var maxBudgetHours = decimal.NewFromInt(1000000)

// DirectoryLookup 工时流程依赖的目录查询
type DirectoryLookup interface {
	GetUser(ctx context.Context, id int64) (*model.UserModel, error)
	GetTask(ctx context.Context, id int64) (*model.TaskModel, error)
	IsUserActive(ctx context.Context, userID int64) (bool, error)
	IsUserAssignedToProject(ctx context.Context, userID, projectID int64) (bool, error)
	ProjectStatus(ctx context.Context, projectID int64) (model.ProjectStatus, error)
	TaskBelongsToProject(ctx context.Context, taskID, projectID int64) (bool, error)
	ProjectApprover(ctx context.Context, projectID int64) (*int64, error)
}

// DirectoryService 用户、客户、项目、任务和项目成员管理
type DirectoryService interface {
	DirectoryLookup

	CreateUser(ctx context.Context, in *UserInput) (*model.UserModel, error)
	UpdateUser(ctx context.Context, id int64, in *UserInput) (*model.UserModel, error)
	ListUsers(ctx context.Context) ([]*model.UserModel, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateClient(ctx context.Context, in *ClientInput) (*model.ClientModel, error)
	UpdateClient(ctx context.Context, id int64, in *ClientInput) (*model.ClientModel, error)
	GetClient(ctx context.Context, id int64) (*model.ClientModel, error)
	ListClients(ctx context.Context) ([]*model.ClientModel, error)
	DeleteClient(ctx context.Context, id int64) error

	CreateProject(ctx context.Context, in *ProjectInput) (*model.ProjectModel, error)
	UpdateProject(ctx context.Context, id int64, in *ProjectInput) (*model.ProjectModel, error)
	GetProject(ctx context.Context, id int64) (*model.ProjectModel, error)
	ListProjects(ctx context.Context, filter *repository.ProjectFilter) ([]*model.ProjectModel, error)
	DeleteProject(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, projectID int64, in *TaskInput) (*model.TaskModel, error)
	UpdateTask(ctx context.Context, id int64, in *TaskInput) (*model.TaskModel, error)
	ListTasks(ctx context.Context, projectID int64) ([]*model.TaskModel, error)
	DeleteTask(ctx context.Context, id int64) error

	Assign(ctx context.Context, projectID, userID int64) (*model.AssignmentModel, error)
	Unassign(ctx context.Context, projectID, userID int64) error
	ListAssignments(ctx context.Context, projectID int64) ([]*model.AssignmentModel, error)
}

// UserInput 创建或更新用户的参数
type UserInput struct {
	Name   string     `json:"name" binding:"required"`
	Email  string     `json:"email" binding:"required"`
	Role   model.Role `json:"role"`
	Active *bool      `json:"active"`
}

// ClientInput 创建或更新客户的参数
type ClientInput struct {
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency"`
}

// ProjectInput 创建或更新项目的参数
type ProjectInput struct {
	ClientID       int64               `json:"client_id" binding:"required"`
	Code           string              `json:"code" binding:"required"`
	Name           string              `json:"name" binding:"required"`
	StartDate      *string             `json:"start_date"` // YYYY-MM-DD
	EndDate        *string             `json:"end_date"`
	BudgetHours    *decimal.Decimal    `json:"budget_hours"`
	Status         model.ProjectStatus `json:"status"`
	ApproverUserID *int64              `json:"approver_user_id"`
}

// TaskInput 创建或更新任务的参数
type TaskInput struct {
	Name            string `json:"name" binding:"required"`
	BillableDefault *bool  `json:"billable_default"`
}

type directoryService struct {
	db          *gorm.DB
	lockTimeout time.Duration
	users       repository.UserRepository
	clients     repository.ClientRepository
	projects    repository.ProjectRepository
	tasks       repository.TaskRepository
	assignments repository.AssignmentRepository
	entries     repository.TimeEntryRepository
	approvals   repository.ApprovalRepository
	auditLogSvc AuditLogService
}

// NewDirectoryService 创建目录服务
func NewDirectoryService(db *gorm.DB, cfg config.WorkflowConfig, auditLogSvc AuditLogService) DirectoryService {
	return &directoryService{
		db:          db,
		lockTimeout: cfg.LockTimeout,
		users:       repository.NewUserRepository(db),
		clients:     repository.NewClientRepository(db),
		projects:    repository.NewProjectRepository(db),
		tasks:       repository.NewTaskRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		entries:     repository.NewTimeEntryRepository(db),
		approvals:   repository.NewApprovalRepository(db),
		auditLogSvc: auditLogSvc,
	}
}

// notFoundOr 记录不存在时返回 NotFound,否则包装原始错误
func notFoundOr(err error, resource string, id interface{}) error {
	if database.IsNotFound(err) {
		return apperror.NotFound(resource, id)
	}
	return fmt.Errorf("failed to load %s %v: %w", resource, id, err)
}

// ---- 用户 ----

func (s *directoryService) validateUser(in *UserInput) (*model.UserModel, error) {
	name, err := utils.TrimAndValidate(in.Name, 255)
	if err != nil {
		return nil, apperror.Validation("name", "%s", err.Error())
	}
	email, err := utils.NormalizeEmail(in.Email)
	if err != nil {
		return nil, apperror.Validation("email", "%s", err.Error())
	}
	role := in.Role
	if role == "" {
		role = model.RoleContributor
	}
	if !role.Valid() {
		return nil, apperror.Validation("role", "unknown role %q", role)
	}
	return &model.UserModel{Name: name, Email: email, Role: role, Active: true}, nil
}

// CreateUser 创建用户
func (s *directoryService) CreateUser(ctx context.Context, in *UserInput) (*model.UserModel, error) {
	user, err := s.validateUser(in)
	if err != nil {
		return nil, err
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if err := s.users.Create(ctx, user); err != nil {
		return nil, database.TranslateError(err, "email")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "create", "user", idString(user.ID), map[string]interface{}{"email": user.Email, "role": user.Role})
	return user, nil
}

// UpdateUser 更新用户
func (s *directoryService) UpdateUser(ctx context.Context, id int64, in *UserInput) (*model.UserModel, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	user, err := s.validateUser(in)
	if err != nil {
		return nil, err
	}

	existing.Name = user.Name
	existing.Email = user.Email
	existing.Role = user.Role
	if in.Active != nil {
		existing.Active = *in.Active
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.users.Save(ctx, existing); err != nil {
		return nil, database.TranslateError(err, "email")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "update", "user", idString(id), map[string]interface{}{"role": existing.Role, "active": existing.Active})
	return existing, nil
}

// GetUser 获取用户
func (s *directoryService) GetUser(ctx context.Context, id int64) (*model.UserModel, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

// ListUsers 列出用户
func (s *directoryService) ListUsers(ctx context.Context) ([]*model.UserModel, error) {
	return s.users.FindAll(ctx)
}

// DeleteUser 删除用户
// 拥有工时条目或审批记录的用户不能删除;其项目审批人引用置空,项目成员关系一并删除
func (s *directoryService) DeleteUser(ctx context.Context, id int64) error {
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).FindByID(ctx, id); err != nil {
			return notFoundOr(err, "user", id)
		}

		owned, err := s.entries.WithTx(tx).CountByUser(ctx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return apperror.Conflict("user %d still owns %d time entries", id, owned)
		}
		decided, err := s.approvals.WithTx(tx).CountByApprover(ctx, id)
		if err != nil {
			return err
		}
		if decided > 0 {
			return apperror.Conflict("user %d has recorded %d approval decisions", id, decided)
		}

		if err := s.projects.WithTx(tx).ClearApprover(ctx, id, time.Now().UTC()); err != nil {
			return err
		}
		if err := s.assignments.WithTx(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "delete", "user", idString(id), nil)
	return nil
}

// ---- 客户 ----

func validateClient(in *ClientInput) (*model.ClientModel, error) {
	name, err := utils.TrimAndValidate(in.Name, 255)
	if err != nil {
		return nil, apperror.Validation("name", "%s", err.Error())
	}
	currency := in.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	currency, err = utils.NormalizeCurrency(currency)
	if err != nil {
		return nil, apperror.Validation("currency", "%s", err.Error())
	}
	return &model.ClientModel{Name: name, Currency: currency}, nil
}

// CreateClient 创建客户
func (s *directoryService) CreateClient(ctx context.Context, in *ClientInput) (*model.ClientModel, error) {
	client, err := validateClient(in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	client.CreatedAt, client.UpdatedAt = now, now

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, database.TranslateError(err, "name")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "create", "client", idString(client.ID), map[string]interface{}{"name": client.Name})
	return client, nil
}

// UpdateClient 更新客户
func (s *directoryService) UpdateClient(ctx context.Context, id int64, in *ClientInput) (*model.ClientModel, error) {
	existing, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "client", id)
	}
	client, err := validateClient(in)
	if err != nil {
		return nil, err
	}

	existing.Name = client.Name
	existing.Currency = client.Currency
	existing.UpdatedAt = time.Now().UTC()
	if err := s.clients.Save(ctx, existing); err != nil {
		return nil, database.TranslateError(err, "name")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "update", "client", idString(id), nil)
	return existing, nil
}

// GetClient 获取客户
func (s *directoryService) GetClient(ctx context.Context, id int64) (*model.ClientModel, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "client", id)
	}
	return client, nil
}

// ListClients 列出客户
func (s *directoryService) ListClients(ctx context.Context) ([]*model.ClientModel, error) {
	return s.clients.FindAll(ctx)
}

// DeleteClient 删除客户,仍有项目引用时拒绝
func (s *directoryService) DeleteClient(ctx context.Context, id int64) error {
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		if _, err := s.clients.WithTx(tx).FindByID(ctx, id); err != nil {
			return notFoundOr(err, "client", id)
		}
		count, err := s.projects.WithTx(tx).CountByClient(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("client %d is still referenced by %d projects", id, count)
		}
		return s.clients.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "delete", "client", idString(id), nil)
	return nil
}

// ---- 项目 ----

func (s *directoryService) validateProject(ctx context.Context, in *ProjectInput) (*model.ProjectModel, error) {
	code := in.Code
	if err := utils.ValidateCode(code); err != nil {
		return nil, apperror.Validation("code", "%s", err.Error())
	}
	name, err := utils.TrimAndValidate(in.Name, 255)
	if err != nil {
		return nil, apperror.Validation("name", "%s", err.Error())
	}
	status := in.Status
	if status == "" {
		status = model.ProjectPlanned
	}
	if !status.Valid() {
		return nil, apperror.Validation("status", "unknown project status %q", status)
	}

	project := &model.ProjectModel{
		ClientID:       in.ClientID,
		Code:           code,
		Name:           name,
		Status:         status,
		ApproverUserID: in.ApproverUserID,
	}
	if in.StartDate != nil && *in.StartDate != "" {
		d, err := ParseDate("start_date", *in.StartDate)
		if err != nil {
			return nil, err
		}
		project.StartDate = &d
	}
	if in.EndDate != nil && *in.EndDate != "" {
		d, err := ParseDate("end_date", *in.EndDate)
		if err != nil {
			return nil, err
		}
		project.EndDate = &d
	}
	if project.StartDate != nil && project.EndDate != nil && project.EndDate.Before(*project.StartDate) {
		return nil, apperror.Validation("end_date", "must not be before start_date")
	}
	if in.BudgetHours != nil {
		budget := in.BudgetHours.Round(2)
		if budget.IsNegative() {
			return nil, apperror.Validation("budget_hours", "must be non-negative")
		}
		if budget.GreaterThanOrEqual(maxBudgetHours) {
			return nil, apperror.Validation("budget_hours", "exceeds numeric(8,2) precision")
		}
		project.BudgetHours = &budget
	}

	// 引用存在性
	if _, err := s.clients.FindByID(ctx, in.ClientID); err != nil {
		return nil, notFoundOr(err, "client", in.ClientID)
	}
	if in.ApproverUserID != nil {
		if _, err := s.users.FindByID(ctx, *in.ApproverUserID); err != nil {
			return nil, notFoundOr(err, "user", *in.ApproverUserID)
		}
	}
	return project, nil
}

// CreateProject 创建项目
func (s *directoryService) CreateProject(ctx context.Context, in *ProjectInput) (*model.ProjectModel, error) {
	project, err := s.validateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, database.TranslateError(err, "code")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "create", "project", idString(project.ID), map[string]interface{}{"code": project.Code, "client_id": project.ClientID})
	return project, nil
}

// UpdateProject 更新项目
func (s *directoryService) UpdateProject(ctx context.Context, id int64, in *ProjectInput) (*model.ProjectModel, error) {
	existing, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "project", id)
	}
	project, err := s.validateProject(ctx, in)
	if err != nil {
		return nil, err
	}

	project.ID = existing.ID
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now().UTC()
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, database.TranslateError(err, "code")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "update", "project", idString(id), map[string]interface{}{"status": project.Status})
	return project, nil
}

// GetProject 获取项目
func (s *directoryService) GetProject(ctx context.Context, id int64) (*model.ProjectModel, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "project", id)
	}
	return project, nil
}

// ListProjects 列出项目
func (s *directoryService) ListProjects(ctx context.Context, filter *repository.ProjectFilter) ([]*model.ProjectModel, error) {
	if filter != nil && filter.Status != nil && !filter.Status.Valid() {
		return nil, apperror.Validation("status", "unknown project status %q", *filter.Status)
	}
	return s.projects.FindAll(ctx, filter)
}

// DeleteProject 删除项目
// 仍有工时条目时拒绝;任务和项目成员级联删除
func (s *directoryService) DeleteProject(ctx context.Context, id int64) error {
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		if _, err := s.projects.WithTx(tx).FindByID(ctx, id); err != nil {
			return notFoundOr(err, "project", id)
		}
		count, err := s.entries.WithTx(tx).CountByProject(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperror.Conflict("project %d is still referenced by %d time entries", id, count)
		}
		if err := s.tasks.WithTx(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := s.assignments.WithTx(tx).DeleteByProject(ctx, id); err != nil {
			return err
		}
		return s.projects.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "delete", "project", idString(id), nil)
	return nil
}

// ---- 任务 ----

// CreateTask 在项目下创建任务
func (s *directoryService) CreateTask(ctx context.Context, projectID int64, in *TaskInput) (*model.TaskModel, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "project", projectID)
	}
	name, err := utils.TrimAndValidate(in.Name, 255)
	if err != nil {
		return nil, apperror.Validation("name", "%s", err.Error())
	}

	now := time.Now().UTC()
	task := &model.TaskModel{
		ProjectID:       projectID,
		Name:            name,
		BillableDefault: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.BillableDefault != nil {
		task.BillableDefault = *in.BillableDefault
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, database.TranslateError(err, "name")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "create", "task", idString(task.ID), map[string]interface{}{"project_id": projectID})
	return task, nil
}

// UpdateTask 更新任务
func (s *directoryService) UpdateTask(ctx context.Context, id int64, in *TaskInput) (*model.TaskModel, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "task", id)
	}
	name, err := utils.TrimAndValidate(in.Name, 255)
	if err != nil {
		return nil, apperror.Validation("name", "%s", err.Error())
	}

	task.Name = name
	if in.BillableDefault != nil {
		task.BillableDefault = *in.BillableDefault
	}
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, database.TranslateError(err, "name")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "update", "task", idString(id), nil)
	return task, nil
}

// GetTask 获取任务
func (s *directoryService) GetTask(ctx context.Context, id int64) (*model.TaskModel, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "task", id)
	}
	return task, nil
}

// ListTasks 列出项目下的任务
func (s *directoryService) ListTasks(ctx context.Context, projectID int64) ([]*model.TaskModel, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "project", projectID)
	}
	return s.tasks.FindByProject(ctx, projectID)
}

// DeleteTask 删除任务,引用它的条目保留并清空任务引用
func (s *directoryService) DeleteTask(ctx context.Context, id int64) error {
	err := database.RunInTx(ctx, s.db, s.lockTimeout, func(tx *gorm.DB) error {
		if _, err := s.tasks.WithTx(tx).FindByID(ctx, id); err != nil {
			return notFoundOr(err, "task", id)
		}
		if err := s.entries.WithTx(tx).ClearTask(ctx, id, time.Now().UTC()); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "delete", "task", idString(id), nil)
	return nil
}

// ---- 项目成员 ----

// Assign 将用户分配到项目
func (s *directoryService) Assign(ctx context.Context, projectID, userID int64) (*model.AssignmentModel, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "project", projectID)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	exists, err := s.assignments.Exists(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Validation("user_id", "user %d is already assigned to project %d", userID, projectID)
	}

	assignment := &model.AssignmentModel{ProjectID: projectID, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, database.TranslateError(err, "user_id")
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "assign", "project", idString(projectID), map[string]interface{}{"user_id": userID})
	return assignment, nil
}

// Unassign 取消项目成员关系
func (s *directoryService) Unassign(ctx context.Context, projectID, userID int64) error {
	n, err := s.assignments.Delete(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("assignment", fmt.Sprintf("%d/%d", projectID, userID))
	}

	recordAudit(ctx, s.auditLogSvc, ActorFromContext(ctx), "unassign", "project", idString(projectID), map[string]interface{}{"user_id": userID})
	return nil
}

// ListAssignments 列出项目成员
func (s *directoryService) ListAssignments(ctx context.Context, projectID int64) ([]*model.AssignmentModel, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, notFoundOr(err, "project", projectID)
	}
	return s.assignments.FindByProject(ctx, projectID)
}

// ---- 流程查询 ----

// IsUserActive 用户是否启用
func (s *directoryService) IsUserActive(ctx context.Context, userID int64) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Active, nil
}

// IsUserAssignedToProject 用户是否被分配到项目,管理员总是返回 true
func (s *directoryService) IsUserAssignedToProject(ctx context.Context, userID, projectID int64) (bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return false, err
	}
	if user.Role == model.RoleAdmin {
		return true, nil
	}
	return s.assignments.Exists(ctx, projectID, userID)
}

// ProjectStatus 项目状态
func (s *directoryService) ProjectStatus(ctx context.Context, projectID int64) (model.ProjectStatus, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return project.Status, nil
}

// TaskBelongsToProject 任务是否属于项目
func (s *directoryService) TaskBelongsToProject(ctx context.Context, taskID, projectID int64) (bool, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return false, err
	}
	return task.ProjectID == projectID, nil
}

// ProjectApprover 项目指定审批人
func (s *directoryService) ProjectApprover(ctx context.Context, projectID int64) (*int64, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return project.ApproverUserID, nil
}
