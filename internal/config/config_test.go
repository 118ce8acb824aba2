package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig 写入临时配置文件
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadConfigFromFile 测试从配置文件加载配置
func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
database:
  driver: sqlite
  path: "/tmp/timesheet.db"
workflow:
  lock_timeout: 2s
  max_batch_size: 50
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/timesheet.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Workflow.LockTimeout)
	assert.Equal(t, 50, cfg.Workflow.MaxBatchSize)
	// 未配置的字段使用默认值
	assert.Equal(t, "header", cfg.Auth.Mode)
	assert.Equal(t, 30*time.Second, cfg.Metrics.CollectInterval)
}

// TestLoadConfigFromEnv 测试从环境变量加载配置
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9191")
	t.Setenv("APP_DATABASE_HOST", "db.example.com")

	path := writeConfig(t, "env: development\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
}

// TestLoadConfig_InvalidDriver 测试不支持的数据库驱动
func TestLoadConfig_InvalidDriver(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: mysql\n")
	_, err := config.Load(path)
	assert.Error(t, err)
}

// TestLoadConfig_JWTRequiresSecret 测试 jwt 模式必须配置密钥
func TestLoadConfig_JWTRequiresSecret(t *testing.T) {
	path := writeConfig(t, "auth:\n  mode: jwt\n")
	_, err := config.Load(path)
	assert.Error(t, err)

	path = writeConfig(t, "auth:\n  mode: jwt\n  jwt_secret: s3cret\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

// TestDefaultConfig 测试默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := config.Default()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Workflow.LockTimeout)
	assert.False(t, config.IsProduction(cfg))
	assert.False(t, config.IsProduction(nil))
}

// TestConfigWatcher_GetConfig 测试配置监听器初始配置
func TestConfigWatcher_GetConfig(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	watcher := config.NewConfigWatcher(cfg, path)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	assert.Same(t, cfg, watcher.GetConfig())
}

// TestLoadConfig_Tracing 测试链路追踪配置
func TestLoadConfig_Tracing(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "env: development\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "timesheet-gin", cfg.Tracing.ServiceName)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	path := writeConfig(t, "tracing:\n  enabled: true\n  exporter: stdout\n  sample_ratio: 0.25\n")
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)

	_, err = config.Load(writeConfig(t, "tracing:\n  enabled: true\n  exporter: jaeger\n"))
	assert.Error(t, err)
}
