/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/api"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/container"
	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Timesheet Gin API server.
The server will listen on the configured host and port,
and provide REST API interfaces for time entries, submissions and approvals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 加载配置
		cfg, err := LoadConfig(cmd)
		if err != nil {
			return err
		}
		if host, _ := cmd.Flags().GetString("host"); cmd.Flags().Changed("host") {
			cfg.Server.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}

		// 2. 初始化日志
		logger, err := api.InitLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if config.IsProduction(cfg) {
			gin.SetMode(gin.ReleaseMode)
		}

		// 3. 初始化链路追踪
		if err := api.InitTracing(context.Background(), cfg.Tracing); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := api.ShutdownTracing(ctx); err != nil {
				logger.WithError(err).Warn("failed to flush traces")
			}
		}()

		// 4. 初始化容器
		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 5. 配置热更新,仅日志级别生效
		configPath, _ := cmd.Flags().GetString("config")
		if configPath != "" {
			watcher := config.NewConfigWatcher(cfg, configPath)
			watcher.OnConfigChange(func(newCfg *config.Config) {
				level, err := logrus.ParseLevel(newCfg.Log.Level)
				if err != nil {
					logger.WithError(err).Warn("ignoring invalid log level from config reload")
					return
				}
				api.SetLoggerLevel(level)
				logger.WithField("level", level.String()).Info("log level reloaded")
			})
			if err := watcher.Start(); err != nil {
				logger.WithError(err).Warn("config watcher not started")
			} else {
				defer watcher.Stop()
			}
		}

		// 6. 启动指标收集器
		collector := metrics.NewCollector(ctr.DB(), ctr.StateCounter(), cfg.Metrics.CollectInterval)
		collector.Start()
		defer collector.Stop()

		// 7. 设置路由
		router := api.SetupRoutes(ctr.RouterDeps())

		// 8. 启动服务器
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			logger.WithFields(logrus.Fields{
				"addr":      addr,
				"auth_mode": cfg.Auth.Mode,
				"driver":    cfg.Database.Driver,
			}).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		// 等待中断信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
		case <-quit:
		}

		logger.Info("shutting down server")

		// 优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 服务器配置标志
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}
