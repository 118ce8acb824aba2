package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CurrentAPIVersion 当前 API 版本
const CurrentAPIVersion = "v1"

// DeprecatedVersionInfo 废弃版本信息
type DeprecatedVersionInfo struct {
	Version         string
	DeprecationDate time.Time
	SunsetDate      time.Time
	MigrationPath   string
}

var (
	deprecatedVersions = make(map[string]DeprecatedVersionInfo)
	deprecatedMu       sync.RWMutex
)

// VersionMiddleware API 版本中间件
//
// 版本取自 /api/vN 路径前缀,API-Version 请求头优先。
// 响应总是带上 API-Version,已废弃版本额外带上废弃与下线日期。
func VersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := versionFromPath(c.Request.URL.Path)
		if headerVersion := c.GetHeader("API-Version"); headerVersion != "" {
			version = headerVersion
		}

		deprecatedMu.RLock()
		info, isDeprecated := deprecatedVersions[version]
		deprecatedMu.RUnlock()

		if isDeprecated {
			c.Header("X-API-Deprecated", "true")
			c.Header("X-API-Deprecation-Date", info.DeprecationDate.Format("2006-01-02"))
			c.Header("X-API-Sunset-Date", info.SunsetDate.Format("2006-01-02"))
			if info.MigrationPath != "" {
				c.Header("X-API-Migration-Path", info.MigrationPath)
			}
		}

		c.Header("API-Version", version)
		c.Set("api_version", version)
		c.Next()
	}
}

func versionFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok {
		return CurrentAPIVersion
	}
	segment, _, _ := strings.Cut(rest, "/")
	if strings.HasPrefix(segment, "v") && len(segment) > 1 {
		return segment
	}
	return CurrentAPIVersion
}

// GetAPIVersion 从上下文获取 API 版本
func GetAPIVersion(c *gin.Context) string {
	if v := c.GetString("api_version"); v != "" {
		return v
	}
	return CurrentAPIVersion
}

// RegisterDeprecatedVersion 注册废弃版本信息
func RegisterDeprecatedVersion(info DeprecatedVersionInfo) {
	deprecatedMu.Lock()
	defer deprecatedMu.Unlock()
	deprecatedVersions[info.Version] = info
}
