package api

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/sirupsen/logrus"
)

// ServiceName 日志中的服务名
const ServiceName = "timesheet-gin"

var defaultLogger *logrus.Logger

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

func jsonFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "time",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	}
}

// NewLogger 创建新的日志记录器
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(jsonFormatter())
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stdout)
	return logger
}

// NewLoggerFromConfig 根据配置创建日志记录器
func NewLoggerFromConfig(cfg *config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	if err := configure(logger, cfg); err != nil {
		return nil, err
	}
	return logger, nil
}

// InitLogger 根据配置初始化默认日志记录器和 logrus 标准日志记录器
//
// 服务层直接使用 logrus 包级函数,两者保持同样的格式、级别和输出。
func InitLogger(cfg *config.LogConfig) (*logrus.Logger, error) {
	logger, err := NewLoggerFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := configure(logrus.StandardLogger(), cfg); err != nil {
		return nil, err
	}
	defaultLogger = logger
	return logger, nil
}

func configure(logger *logrus.Logger, cfg *config.LogConfig) error {
	// 设置日志格式
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(jsonFormatter())
	}

	// 设置日志级别
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// 设置日志输出
	var writers []io.Writer
	if cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		logDir := "logs"
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		logFile := filepath.Join(logDir, ServiceName+".log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	logger.SetOutput(io.MultiWriter(writers...))

	// 添加默认字段（用于日志聚合）
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(&defaultFieldsHook{
		fields: map[string]interface{}{
			"service": ServiceName,
		},
	})
	return nil
}

// defaultFieldsHook 添加默认字段的 Hook
type defaultFieldsHook struct {
	fields map[string]interface{}
}

func (h *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		entry.Data[k] = v
	}
	return nil
}

// GetLogger 获取默认日志记录器
func GetLogger() *logrus.Logger {
	if defaultLogger == nil {
		defaultLogger = NewLogger()
	}
	return defaultLogger
}

// SetLoggerOutput 设置日志输出
func SetLoggerOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// SetLoggerLevel 设置日志级别,同时作用于标准日志记录器
func SetLoggerLevel(level logrus.Level) {
	GetLogger().SetLevel(level)
	logrus.SetLevel(level)
}
