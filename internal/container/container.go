package container

import (
	"fmt"
	"time"

	"github.com/mautops/timesheet-gin/internal/api"
	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/database"
	"github.com/mautops/timesheet-gin/internal/repository"
	"github.com/mautops/timesheet-gin/internal/service"
	"gorm.io/gorm"
)

// identityCacheTTL 身份缓存有效期
const identityCacheTTL = 30 * time.Second

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、身份解析和业务服务
type Container struct {
	cfg        *config.Config
	db         *gorm.DB
	validator  *auth.TokenValidator
	identities *auth.IdentityCache

	auditLogSvc   service.AuditLogService
	directorySvc  service.DirectoryService
	entrySvc      service.EntryService
	submissionSvc service.SubmissionService
	approvalSvc   service.ApprovalService
	querySvc      service.QueryService
	statisticsSvc service.StatisticsService
	seedSvc       service.SeedService
}

// NewContainer 创建依赖注入容器
// 根据配置连接数据库、执行迁移并初始化所有服务
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewContainerWithDB(cfg, db)
}

// NewContainerWithDB 使用已有数据库连接创建容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	c := &Container{
		cfg:        cfg,
		db:         db,
		identities: auth.NewIdentityCache(identityCacheTTL),
	}

	// 2. 初始化 Token 验证器
	if cfg.Auth.Mode == auth.ModeJWT {
		validator, err := auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token validator: %w", err)
		}
		c.validator = validator
	}

	// 3. 初始化服务
	c.auditLogSvc = service.NewAuditLogService(repository.NewAuditLogRepository(db))
	c.directorySvc = service.NewDirectoryService(db, cfg.Workflow, c.auditLogSvc)
	c.entrySvc = service.NewEntryService(db, cfg.Workflow, c.directorySvc, c.auditLogSvc)
	c.submissionSvc = service.NewSubmissionService(db, cfg.Workflow, c.auditLogSvc)
	c.approvalSvc = service.NewApprovalService(db, cfg.Workflow, c.directorySvc, c.auditLogSvc)
	c.querySvc = service.NewQueryService(db, c.directorySvc)
	c.statisticsSvc = service.NewStatisticsService(db)
	c.seedSvc = service.NewSeedService(db, c.directorySvc)

	return c, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// TokenValidator 获取 Token 验证器,auth.mode=header 时为 nil
func (c *Container) TokenValidator() *auth.TokenValidator {
	return c.validator
}

// IdentityCache 获取身份缓存
func (c *Container) IdentityCache() *auth.IdentityCache {
	return c.identities
}

// DirectoryService 获取目录服务
func (c *Container) DirectoryService() service.DirectoryService {
	return c.directorySvc
}

// SeedService 获取初始数据服务
func (c *Container) SeedService() service.SeedService {
	return c.seedSvc
}

// StateCounter 按状态统计工时条目,供指标收集器使用
func (c *Container) StateCounter() repository.TimeEntryRepository {
	return repository.NewTimeEntryRepository(c.db)
}

// RouterDeps 组装路由依赖
func (c *Container) RouterDeps() *api.RouterDeps {
	return &api.RouterDeps{
		Config:      c.cfg,
		DB:          c.db,
		Validator:   c.validator,
		Identities:  c.identities,
		Directory:   c.directorySvc,
		Entries:     c.entrySvc,
		Submissions: c.submissionSvc,
		Approvals:   c.approvalSvc,
		Queries:     c.querySvc,
		Statistics:  c.statisticsSvc,
	}
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
