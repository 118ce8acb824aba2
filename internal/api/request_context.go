package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/mautops/timesheet-gin/internal/service"
)

// requestContext 把调用方和请求信息放入服务层使用的 context
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if userID := auth.UserIDFrom(c); userID != 0 {
		ctx = service.WithActor(ctx, userID)
	}
	return service.WithRequestInfo(ctx, service.RequestInfo{
		RequestID: c.GetString("request_id"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}

// currentUser 当前调用方 ID,身份中间件保证存在
func currentUser(c *gin.Context) int64 {
	return auth.UserIDFrom(c)
}

// pathID 解析正整数路径参数
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// queryInt64 解析可选的整数查询参数
func queryInt64(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.Validation(name, "must be an integer")
	}
	return &v, nil
}

// queryString 解析可选的字符串查询参数
func queryString(c *gin.Context, name string) *string {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	return &raw
}

// bindJSON 绑定请求体,失败时返回 400
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return WrapError(err, http.StatusBadRequest, string(apperror.KindValidation)).WithField("body")
	}
	return nil
}
