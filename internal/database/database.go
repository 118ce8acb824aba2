package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// BuildSQLiteDSN 构建 SQLite DSN,开启外键约束与忙等待
func BuildSQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// GetProductionPoolConfig 获取生产环境连接池配置
func GetProductionPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    20,
		MaxOpenConns:    200,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 300,  // 5 分钟
	}
}

// PoolDefaults 按运行环境选择连接池默认值
func PoolDefaults(cfg *config.Config) *PoolConfig {
	if config.IsProduction(cfg) {
		return GetProductionPoolConfig()
	}
	return GetPoolConfig()
}

// resolvePoolConfig 合并配置值与默认值
func resolvePoolConfig(cfg config.DatabaseConfig, defaults *PoolConfig) *PoolConfig {
	if cfg.MaxIdleConns == 0 && cfg.MaxOpenConns == 0 {
		return defaults
	}
	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = defaults.MaxIdleConns
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = defaults.MaxOpenConns
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}
	return pool
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return open(cfg, GetPoolConfig())
}

// ConnectProduction 连接数据库(生产环境连接池)
func ConnectProduction(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return open(cfg, GetProductionPoolConfig())
}

func open(cfg config.DatabaseConfig, defaults *PoolConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if cfg.LogMode {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(cfg.Path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(BuildSQLiteDSN(cfg.Path))
	case DriverPostgres, "":
		dialector = postgres.Open(BuildDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite 只允许单写连接,所有事务串行执行
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return db, nil
	}

	pool := resolvePoolConfig(cfg, defaults)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

func ensureSQLiteDir(path string) error {
	if path == "" || strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sqlite directory: %w", err)
	}
	return nil
}

// Models 参与迁移的全部模型,按依赖顺序排列
func Models() []interface{} {
	return []interface{}{
		&model.UserModel{},
		&model.ClientModel{},
		&model.ProjectModel{},
		&model.TaskModel{},
		&model.AssignmentModel{},
		&model.TimeEntryModel{},
		&model.ApprovalModel{},
		&model.StateHistoryModel{},
		&model.AuditLogModel{},
	}
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if db.Dialector.Name() == DriverPostgres {
		if err := createForeignKeys(db); err != nil {
			return fmt.Errorf("failed to create foreign keys: %w", err)
		}
	}

	return nil
}

// CreateIndexes 创建模型标签之外的查询索引
func CreateIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		ddl  string
	}{
		{"idx_time_entries_project_date", "CREATE INDEX IF NOT EXISTS idx_time_entries_project_date ON time_entries(project_id, work_date)"},
		{"idx_time_entries_state_batch", "CREATE INDEX IF NOT EXISTS idx_time_entries_state_batch ON time_entries(state, submit_batch_id)"},
		{"idx_approvals_entry_decided", "CREATE INDEX IF NOT EXISTS idx_approvals_entry_decided ON approvals(time_entry_id, decided_at)"},
		{"idx_audit_resource", "CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)"},
	}
	for _, idx := range indexes {
		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}
	return nil
}

// foreignKeys PostgreSQL 外键及其引用动作
var foreignKeys = []struct {
	table, name, column, ref, action string
}{
	{"projects", "fk_projects_client", "client_id", "clients(id)", "ON DELETE RESTRICT"},
	{"projects", "fk_projects_approver", "approver_user_id", "users(id)", "ON DELETE SET NULL"},
	{"tasks", "fk_tasks_project", "project_id", "projects(id)", "ON DELETE CASCADE"},
	{"project_assignments", "fk_assignments_project", "project_id", "projects(id)", "ON DELETE CASCADE"},
	{"project_assignments", "fk_assignments_user", "user_id", "users(id)", "ON DELETE CASCADE"},
	{"time_entries", "fk_time_entries_user", "user_id", "users(id)", "ON DELETE RESTRICT"},
	{"time_entries", "fk_time_entries_project", "project_id", "projects(id)", "ON DELETE RESTRICT"},
	{"time_entries", "fk_time_entries_task", "task_id", "tasks(id)", "ON DELETE SET NULL"},
	{"approvals", "fk_approvals_entry", "time_entry_id", "time_entries(id)", "ON DELETE RESTRICT"},
	{"approvals", "fk_approvals_approver", "approver_user_id", "users(id)", "ON DELETE RESTRICT"},
}

func createForeignKeys(db *gorm.DB) error {
	for _, fk := range foreignKeys {
		ddl := fmt.Sprintf(`DO $$ BEGIN
	ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s %s;
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;`, fk.table, fk.name, fk.column, fk.ref, fk.action)
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", fk.name, err)
		}
	}
	return nil
}

// ConnectWithRetry 带重试的数据库连接,生产环境使用生产连接池
func ConnectWithRetry(cfg *config.Config, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	connect := Connect
	if config.IsProduction(cfg) {
		connect = ConnectProduction
	}

	for i := 0; i < maxRetries; i++ {
		db, err = connect(cfg.Database)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}
