package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// DedupCache 事件去重缓存，使用 go-cache 实现 TTL 自动过期
// 节点重连 / 日志重放时同一事件会再次到达，按事件种类 + 订单号去重
type DedupCache struct {
	cache *cache.Cache // go-cache 内置 TTL 和自动清理
	ttl   time.Duration
}

// NewDedupCache 创建事件去重缓存
// ttl: 事件保留时间（建议 30 分钟）
// 清理间隔自动设为 2×TTL
func NewDedupCache(ttl time.Duration) *DedupCache {
	return &DedupCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// IsSeen 检查事件是否已处理
func (c *DedupCache) IsSeen(kind, orderID string) bool {
	_, exists := c.cache.Get(c.dedupKey(kind, orderID))
	return exists
}

// Mark 标记事件为已处理
func (c *DedupCache) Mark(kind, orderID string) {
	c.cache.Set(c.dedupKey(kind, orderID), time.Now(), cache.DefaultExpiration)
}

// dedupKey 生成去重键
// 格式: "kind-orderID"
func (c *DedupCache) dedupKey(kind, orderID string) string {
	return kind + "-" + orderID
}

// Stats 获取统计信息
func (c *DedupCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"item_count":  c.cache.ItemCount(),
		"ttl_minutes": c.ttl.Minutes(),
	}
}
