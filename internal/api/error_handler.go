package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/apperror"
	"github.com/sirupsen/logrus"
)

// APIError 传输层错误,如请求体无法解析
type APIError struct {
	Code    int
	Message string
	Detail  string
	Field   string
}

func (e *APIError) Error() string {
	return e.Message
}

// statusOf 业务错误类别对应的 HTTP 状态码
func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HandleError 将错误写入响应
//
// 业务错误映射为 400/404/403/409,其余错误返回 500 且不暴露细节。
func HandleError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		status := statusOf(appErr.Kind)
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: string(appErr.Kind),
			Detail:  appErr.Error(),
			Field:   appErr.Field,
			EntryID: appErr.EntryID,
		})
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Code, ErrorResponse{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Detail:  apiErr.Detail,
			Field:   apiErr.Field,
		})
		return
	}

	GetLogger().WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	}).Error("unhandled error")
	Error(c, http.StatusInternalServerError, "internal server error", "")
}

// ErrorHandlerMiddleware 错误处理中间件,处理 handler 通过 c.Error 记录的错误
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			HandleError(c, c.Errors.Last().Err)
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// WithField 标记出错的请求字段
func (e *APIError) WithField(field string) *APIError {
	e.Field = field
	return e
}
