package auth

import (
	"sync"
	"time"

	"github.com/mautops/timesheet-gin/internal/model"
)

// Identity 已解析的调用方身份
type Identity struct {
	UserID int64
	Role   model.Role
	Active bool
}

// IdentityCache 身份缓存,避免每个请求都查询用户表
type IdentityCache struct {
	cache *sync.Map
	ttl   time.Duration
}

// cacheEntry 缓存条目
type cacheEntry struct {
	value     Identity
	expiresAt time.Time
}

// NewIdentityCache 创建身份缓存,ttl <= 0 时不缓存
func NewIdentityCache(ttl time.Duration) *IdentityCache {
	return &IdentityCache{
		cache: &sync.Map{},
		ttl:   ttl,
	}
}

// Get 获取缓存
func (c *IdentityCache) Get(userID int64) (Identity, bool) {
	val, found := c.cache.Load(userID)
	if !found {
		return Identity{}, false
	}

	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(userID)
		return Identity{}, false
	}
	return entry.value, true
}

// Set 设置缓存
func (c *IdentityCache) Set(identity Identity) {
	if c.ttl <= 0 {
		return
	}
	c.cache.Store(identity.UserID, &cacheEntry{
		value:     identity,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Invalidate 用户角色或状态变化后清除缓存
func (c *IdentityCache) Invalidate(userID int64) {
	c.cache.Delete(userID)
}

// Clear 清空缓存
func (c *IdentityCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}
