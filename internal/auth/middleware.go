package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/model"
)

const (
	// ModeHeader 信任网关传入的 X-User-ID
	ModeHeader = "header"
	// ModeJWT 校验 Bearer Token
	ModeJWT = "jwt"

	// HeaderUserID 用户 ID 请求头
	HeaderUserID = "X-User-ID"

	contextKeyUserID = "user_id"
	contextKeyRole   = "role"
)

// UserLookup 按 ID 加载用户
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*model.UserModel, error)
}

// IdentityMiddleware 解析调用方身份
//
// 身份来源由 mode 决定;解析出的用户必须存在且启用,否则返回 401。
func IdentityMiddleware(mode string, validator *TokenValidator, users UserLookup, cache *IdentityCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, reason := resolveUserID(c, mode, validator)
		if reason != "" {
			unauthorized(c, reason)
			return
		}

		identity, ok := cache.Get(userID)
		if !ok {
			user, err := users.GetUser(c.Request.Context(), userID)
			if err != nil {
				unauthorized(c, "unknown user")
				return
			}
			identity = Identity{UserID: user.ID, Role: user.Role, Active: user.Active}
			cache.Set(identity)
		}
		if !identity.Active {
			unauthorized(c, "user is inactive")
			return
		}

		c.Set(contextKeyUserID, identity.UserID)
		c.Set(contextKeyRole, identity.Role)
		c.Next()
	}
}

func resolveUserID(c *gin.Context, mode string, validator *TokenValidator) (int64, string) {
	if mode == ModeJWT {
		token := c.GetHeader("Authorization")
		if token == "" {
			return 0, "missing authorization header"
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := validator.ValidateToken(token)
		if err != nil {
			return 0, "invalid token"
		}
		id, _ := claims.UserID()
		return id, ""
	}

	raw := c.GetHeader(HeaderUserID)
	if raw == "" {
		return 0, "missing " + HeaderUserID + " header"
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, "invalid " + HeaderUserID + " header"
	}
	return id, ""
}

// RequireRole 角色校验中间件
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFrom(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "forbidden",
			"detail":  "role " + string(role) + " may not perform this operation",
		})
		c.Abort()
	}
}

// UserIDFrom 获取调用方用户 ID
func UserIDFrom(c *gin.Context) int64 {
	return c.GetInt64(contextKeyUserID)
}

// RoleFrom 获取调用方角色
func RoleFrom(c *gin.Context) model.Role {
	if v, ok := c.Get(contextKeyRole); ok {
		if role, ok := v.(model.Role); ok {
			return role
		}
	}
	return ""
}

func unauthorized(c *gin.Context, detail string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": "unauthorized",
		"detail":  detail,
	})
	c.Abort()
}
