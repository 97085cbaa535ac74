package cache

// DedupCacheInterface 去重缓存接口
type DedupCacheInterface interface {
	IsSeen(kind, orderID string) bool
	Mark(kind, orderID string)
	Stats() map[string]interface{}
}
