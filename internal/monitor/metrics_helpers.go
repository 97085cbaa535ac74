package monitor

// 便捷函数供外部调用，无需访问 Metrics 实例

// IncEventProcessed 增加处理的事件计数
func IncEventProcessed(kind string) {
	GetMetrics().IncEventProcessed(kind)
}

// IncEventDeduped 增加去重事件计数
func IncEventDeduped(kind string) {
	GetMetrics().IncEventDeduped(kind)
}

// IncMalformedOrder 增加视图构建跳过的坏订单计数
func IncMalformedOrder(view string) {
	GetMetrics().IncMalformedOrder(view)
}

// ObserveViewBuild 观察视图构建耗时
func ObserveViewBuild(view string, seconds float64) {
	GetMetrics().ObserveViewBuild(view, seconds)
}

// IncCacheHit 增加缓存命中计数
func IncCacheHit(cacheType string) {
	GetMetrics().IncCacheHit(cacheType)
}

// IncCacheMiss 增加缓存未命中计数
func IncCacheMiss(cacheType string) {
	GetMetrics().IncCacheMiss(cacheType)
}

// SetBookOrders 设置订单簿集合条数
func SetBookOrders(collection string, count int) {
	GetMetrics().SetBookOrders(collection, count)
}

// SetMessageQueueSize 设置消息队列大小
func SetMessageQueueSize(size int) {
	GetMetrics().SetMessageQueueSize(size)
}

// IncMessageQueueFull 增加消息队列满事件计数
func IncMessageQueueFull() {
	GetMetrics().IncMessageQueueFull()
}

// ObserveBatchWriteSize 观察批量写入大小
func ObserveBatchWriteSize(size int) {
	GetMetrics().ObserveBatchWriteSize(size)
}

// ObserveBatchWriteDuration 观察批量写入耗时
func ObserveBatchWriteDuration(duration float64) {
	GetMetrics().ObserveBatchWriteDuration(duration)
}
