package cache

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/utrading/utrading-dex-monitor/internal/monitor"
)

// ViewCache 视图结果缓存
//
// 视图是原始订单集合的纯投影，键里带上 Book 的修订号，
// 任何事件写入都会推进修订号，旧条目自然失效、由 TTL 回收。
// 缓存命中与否只影响耗时，重算永远安全
type ViewCache struct {
	cache *cache.Cache
}

// NewViewCache 创建视图缓存
// ttl: 条目保留时间；修订号推进后旧条目不会再被命中
func NewViewCache(ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ViewCache{
		cache: cache.New(ttl, ttl*2),
	}
}

// Key 组合视图缓存键
// revision 是 Book 修订号，extra 是视图相关参数（交易对、账户、周期等）
func (c *ViewCache) Key(view string, revision uint64, extra ...string) string {
	key := fmt.Sprintf("%s@%d", view, revision)
	for _, e := range extra {
		key += ":" + e
	}
	return key
}

// Get 读取缓存的视图结果
func (c *ViewCache) Get(key string) (interface{}, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		monitor.IncCacheHit("view")
	} else {
		monitor.IncCacheMiss("view")
	}
	return v, ok
}

// Set 写入视图结果
func (c *ViewCache) Set(key string, view interface{}) {
	c.cache.Set(key, view, cache.DefaultExpiration)
}

// Flush 清空全部条目（交易对配置变更时调用）
func (c *ViewCache) Flush() {
	c.cache.Flush()
}

// Stats 获取统计信息
func (c *ViewCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"item_count": c.cache.ItemCount(),
	}
}
