package monitor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 指标收集器
type Metrics struct {
	eventsProcessed *prometheus.CounterVec
	eventsDeduped   *prometheus.CounterVec
	malformedOrders *prometheus.CounterVec

	viewBuildDuration *prometheus.HistogramVec
	cacheHitTotal     *prometheus.CounterVec
	cacheMissTotal    *prometheus.CounterVec

	bookOrders *prometheus.GaugeVec

	websocketConnected prometheus.Gauge
	natsConnected      prometheus.Gauge

	signalsPublished *prometheus.CounterVec
	signalErrors     *prometheus.CounterVec

	// 消息队列相关
	messageQueueSize      prometheus.Gauge
	messageQueueFullTotal prometheus.Counter

	// 批量写入器相关
	batchWriteSize         prometheus.Histogram
	batchWriteDurationSecs prometheus.Histogram
}

// NewMetrics 创建指标收集器
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_processed_total",
				Help:      "处理的合约事件总数（按事件种类）",
			},
			[]string{"kind"}, // order, cancel, trade
		),
		eventsDeduped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_deduplicated_total",
				Help:      "去重丢弃的事件总数（按事件种类）",
			},
			[]string{"kind"},
		),
		malformedOrders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_orders_total",
				Help:      "视图构建时跳过的坏订单总数（按视图）",
			},
			[]string{"view"},
		),
		viewBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_build_duration_seconds",
				Help:      "视图构建耗时分布（秒）",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"view"},
		),
		cacheHitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hit_total",
				Help:      "缓存命中总数（按缓存类型）",
			},
			[]string{"cache_type"}, // dedup, view
		),
		cacheMissTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_miss_total",
				Help:      "缓存未命中总数（按缓存类型）",
			},
			[]string{"cache_type"},
		),
		bookOrders: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "book_orders",
				Help:      "内存订单簿各集合当前条数",
			},
			[]string{"collection"}, // all, cancelled, filled
		),
		websocketConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connected",
				Help:      "WebSocket connection status (1=connected, 0=disconnected)",
			},
		),
		natsConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "nats_connected",
				Help:      "NATS connection status (1=connected, 0=disconnected)",
			},
		),
		signalsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_published_total",
				Help:      "Total number of trade signals published to NATS",
			},
			[]string{"symbol"},
		),
		signalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signal_errors_total",
				Help:      "Total number of signal publish errors",
			},
			[]string{"type"},
		),
		messageQueueSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "message_queue_size",
				Help:      "消息队列当前大小",
			},
		),
		messageQueueFullTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "message_queue_full_total",
				Help:      "消息队列满事件总数",
			},
		),
		batchWriteSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_write_size",
				Help:      "批量写入大小分布",
				Buckets:   []float64{1, 10, 25, 50, 100, 200, 500},
			},
		),
		batchWriteDurationSecs: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_write_duration_seconds",
				Help:      "批量写入耗时分布（秒）",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
	}

	prometheus.MustRegister(
		m.eventsProcessed,
		m.eventsDeduped,
		m.malformedOrders,
		m.viewBuildDuration,
		m.cacheHitTotal,
		m.cacheMissTotal,
		m.bookOrders,
		m.websocketConnected,
		m.natsConnected,
		m.signalsPublished,
		m.signalErrors,
		m.messageQueueSize,
		m.messageQueueFullTotal,
		m.batchWriteSize,
		m.batchWriteDurationSecs,
	)

	return m
}

// IncEventProcessed 增加处理的事件计数
func (m *Metrics) IncEventProcessed(kind string) {
	m.eventsProcessed.WithLabelValues(kind).Inc()
}

// IncEventDeduped 增加去重事件计数
func (m *Metrics) IncEventDeduped(kind string) {
	m.eventsDeduped.WithLabelValues(kind).Inc()
}

// IncMalformedOrder 增加坏订单计数
func (m *Metrics) IncMalformedOrder(view string) {
	m.malformedOrders.WithLabelValues(view).Inc()
}

// ObserveViewBuild 观察视图构建耗时
func (m *Metrics) ObserveViewBuild(view string, seconds float64) {
	m.viewBuildDuration.WithLabelValues(view).Observe(seconds)
}

// IncCacheHit 增加缓存命中计数
func (m *Metrics) IncCacheHit(cacheType string) {
	m.cacheHitTotal.WithLabelValues(cacheType).Inc()
}

// IncCacheMiss 增加缓存未命中计数
func (m *Metrics) IncCacheMiss(cacheType string) {
	m.cacheMissTotal.WithLabelValues(cacheType).Inc()
}

// SetBookOrders 设置订单簿集合条数
func (m *Metrics) SetBookOrders(collection string, count int) {
	m.bookOrders.WithLabelValues(collection).Set(float64(count))
}

// SetWebSocketConnected 设置WebSocket连接状态
func (m *Metrics) SetWebSocketConnected(connected bool) {
	if connected {
		m.websocketConnected.Set(1)
	} else {
		m.websocketConnected.Set(0)
	}
}

// SetNATSConnected 设置NATS连接状态
func (m *Metrics) SetNATSConnected(connected bool) {
	if connected {
		m.natsConnected.Set(1)
	} else {
		m.natsConnected.Set(0)
	}
}

// IncSignalsPublished 增加发布的信号计数
func (m *Metrics) IncSignalsPublished(symbol string) {
	m.signalsPublished.WithLabelValues(symbol).Inc()
}

// IncSignalErrors 增加信号错误计数
func (m *Metrics) IncSignalErrors(errType string) {
	m.signalErrors.WithLabelValues(errType).Inc()
}

// SetMessageQueueSize 设置消息队列大小
func (m *Metrics) SetMessageQueueSize(size int) {
	m.messageQueueSize.Set(float64(size))
}

// IncMessageQueueFull 增加消息队列满事件计数
func (m *Metrics) IncMessageQueueFull() {
	m.messageQueueFullTotal.Inc()
}

// ObserveBatchWriteSize 观察批量写入大小
func (m *Metrics) ObserveBatchWriteSize(size int) {
	m.batchWriteSize.Observe(float64(size))
}

// ObserveBatchWriteDuration 观察批量写入耗时
func (m *Metrics) ObserveBatchWriteDuration(duration float64) {
	m.batchWriteDurationSecs.Observe(duration)
}

var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics 获取全局指标收集器
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = NewMetrics("dex_monitor")
	})
	return globalMetrics
}

// InitMetrics 初始化指标收集器（供main使用）
func InitMetrics() {
	GetMetrics()
}
