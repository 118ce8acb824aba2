// Package apperror 定义工时审批流程的错误分类
//
// 所有被拒绝的操作都返回 *Error,调用方通过 Kind 区分
// 校验失败、资源不存在、无权限以及状态冲突。
package apperror

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
	Field   string // 出错字段(可选)
	EntryID int64  // 导致失败的工时条目(可选)
	Err     error  // 底层错误(可选)
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.EntryID != 0 {
		msg = fmt.Sprintf("%s (entry %d)", msg, e.EntryID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithEntry 返回带有条目 ID 的副本
func (e *Error) WithEntry(entryID int64) *Error {
	cp := *e
	cp.EntryID = entryID
	return &cp
}

// Validation 字段校验失败
func Validation(field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound 引用的资源不存在
func NotFound(resource string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

// EntryNotFound 工时条目不存在
func EntryNotFound(entryID int64) *Error {
	return &Error{Kind: KindNotFound, Message: "time entry not found", EntryID: entryID}
}

// Forbidden 角色、分配或自审批限制
func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict 非法状态转换、并发修改或批量失败
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Wrap 保留类别并附加底层错误
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// As 从错误链中取出 *Error
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf 返回错误类别,非业务错误返回空字符串
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return ""
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
