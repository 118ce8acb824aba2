package service

import "context"

type ctxKey string

const (
	actorKey       ctxKey = "actor_id"
	requestInfoKey ctxKey = "request_info"
)

// RequestInfo 审计日志需要的请求信息
type RequestInfo struct {
	RequestID string
	IP        string
	UserAgent string
}

// WithActor 在 context 中记录当前调用方
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey, userID)
}

// ActorFromContext 取出当前调用方,未设置时返回 0
func ActorFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(actorKey).(int64); ok {
		return id
	}
	return 0
}

// WithRequestInfo 在 context 中记录请求信息
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

// RequestInfoFromContext 取出请求信息
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	info, _ := ctx.Value(requestInfoKey).(RequestInfo)
	return info
}
