package processor

import (
	"errors"
	"sync"
	"time"

	"github.com/utrading/utrading-dex-monitor/internal/dao"
	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/pkg/concurrent"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// BatchItem 批量写入项接口
type BatchItem interface {
	TableName() string
	DedupKey() string // 返回去重键
}

// OrderItem 挂单写入项
type OrderItem struct {
	Order *models.DexOrder
}

func (i OrderItem) TableName() string {
	return "dex_orders"
}

func (i OrderItem) DedupKey() string {
	return "o:" + i.Order.OrderID
}

// CancellationItem 撤单写入项
type CancellationItem struct {
	Cancellation *models.DexCancellation
}

func (i CancellationItem) TableName() string {
	return "dex_cancellations"
}

func (i CancellationItem) DedupKey() string {
	return "c:" + i.Cancellation.OrderID
}

// TradeItem 成交写入项
type TradeItem struct {
	Trade *models.DexTrade
}

func (i TradeItem) TableName() string {
	return "dex_trades"
}

func (i TradeItem) DedupKey() string {
	return "t:" + i.Trade.OrderID
}

// BatchWriterConfig 批量写入配置
type BatchWriterConfig struct {
	BatchSize     int           // 批量大小（默认 100）
	FlushInterval time.Duration // 刷新间隔（默认 2s）
	MaxQueueSize  int           // 最大队列大小（默认 10000）
}

// BatchWriter 批量写入器
// 将数据库写入操作批量执行，降低 IO 压力
type BatchWriter struct {
	config    *BatchWriterConfig
	queue     chan BatchItem
	buffers   concurrent.Map[string, BatchItem] // 按 dedupKey 分组（去重）
	flushTick *time.Ticker
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewBatchWriter 创建批量写入器
func NewBatchWriter(config *BatchWriterConfig) *BatchWriter {
	if config == nil {
		config = &BatchWriterConfig{}
	}

	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 2 * time.Second
	}
	if config.MaxQueueSize <= 0 {
		config.MaxQueueSize = 10000
	}

	return &BatchWriter{
		config:  config,
		queue:   make(chan BatchItem, config.MaxQueueSize),
		buffers: concurrent.Map[string, BatchItem]{},
		done:    make(chan struct{}),
	}
}

// Start 启动批量写入器
func (w *BatchWriter) Start() {
	w.flushTick = time.NewTicker(w.config.FlushInterval)

	// 启动接收协程
	w.wg.Add(1)
	go w.receiveLoop()

	// 启动刷新协程
	w.wg.Add(1)
	go w.flushLoop()
}

func (w *BatchWriter) receiveLoop() {
	defer w.wg.Done()
	for {
		select {
		case item := <-w.queue:
			key := item.DedupKey()
			w.buffers.Store(key, item)

			// 检查是否达到批量大小
			if w.buffers.Len() >= int64(w.config.BatchSize) {
				w.flushAll()
			}
		case <-w.done:
			// 处理队列中剩余的数据
			for len(w.queue) > 0 {
				item := <-w.queue
				key := item.DedupKey()
				w.buffers.Store(key, item)
			}
			return
		}
	}
}

func (w *BatchWriter) flushLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.flushTick.C:
			w.flushAll()
		case <-w.done:
			w.flushAll()
			return
		}
	}
}

// flush 刷新指定表
func (w *BatchWriter) flush(tables ...string) {
	if len(tables) == 0 {
		return
	}

	// 按 table 分组收集数据
	grouped := make(map[string][]BatchItem)
	var keysToDelete []string

	w.buffers.Range(func(key string, item BatchItem) bool {
		table := item.TableName()

		for _, t := range tables {
			if t == table {
				grouped[table] = append(grouped[table], item)
				keysToDelete = append(keysToDelete, key)
				break
			}
		}
		return true
	})

	// 执行批量 upsert
	for table, items := range grouped {
		start := time.Now()
		if err := w.batchUpsert(table, items); err != nil {
			logger.Error().Err(err).Str("table", table).Int("count", len(items)).Msg("batch upsert failed")
		} else {
			monitor.ObserveBatchWriteSize(len(items))
			monitor.ObserveBatchWriteDuration(time.Since(start).Seconds())
			logger.Debug().Str("table", table).Int("count", len(items)).Msg("batch upsert success")
		}
	}

	// 删除已刷新的数据
	for _, key := range keysToDelete {
		w.buffers.Delete(key)
	}
}

// flushAll 刷新所有表
func (w *BatchWriter) flushAll() {
	w.flush(
		"dex_orders",
		"dex_cancellations",
		"dex_trades",
	)
}

// batchUpsert 按表分发到对应 DAO
func (w *BatchWriter) batchUpsert(table string, items []BatchItem) error {
	switch table {
	case "dex_orders":
		return w.batchUpsertOrders(items)
	case "dex_cancellations":
		return w.batchUpsertCancellations(items)
	case "dex_trades":
		return w.batchUpsertTrades(items)
	default:
		logger.Warn().Str("table", table).Msg("unsupported table for batch upsert")
		return nil // 不阻塞未知表
	}
}

func (w *BatchWriter) batchUpsertOrders(items []BatchItem) error {
	orders := make([]*models.DexOrder, 0, len(items))
	for _, item := range items {
		if o, ok := item.(OrderItem); ok {
			orders = append(orders, o.Order)
		}
	}

	if len(orders) == 0 {
		return nil
	}

	return dao.Order().BatchUpsert(orders)
}

func (w *BatchWriter) batchUpsertCancellations(items []BatchItem) error {
	cancels := make([]*models.DexCancellation, 0, len(items))
	for _, item := range items {
		if c, ok := item.(CancellationItem); ok {
			cancels = append(cancels, c.Cancellation)
		}
	}

	if len(cancels) == 0 {
		return nil
	}

	return dao.Cancellation().BatchUpsert(cancels)
}

func (w *BatchWriter) batchUpsertTrades(items []BatchItem) error {
	trades := make([]*models.DexTrade, 0, len(items))
	for _, item := range items {
		if t, ok := item.(TradeItem); ok {
			trades = append(trades, t.Trade)
		}
	}

	if len(trades) == 0 {
		return nil
	}

	return dao.Trade().BatchUpsert(trades)
}

// Add 添加写入项
func (w *BatchWriter) Add(item BatchItem) error {
	select {
	case w.queue <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop 停止写入器
func (w *BatchWriter) Stop() {
	// 1. 通知协程退出
	close(w.done)

	// 2. 等待协程处理完队列数据并退出
	w.wg.Wait()

	// 3. 刷新所有缓冲数据
	w.flushAll()

	// 4. 停止定时器
	if w.flushTick != nil {
		w.flushTick.Stop()
	}
}

// GracefulShutdown 优雅关闭，带超时控制
func (w *BatchWriter) GracefulShutdown(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		logger.Warn().Dur("timeout", timeout).Msg("batch writer shutdown timeout, forcing flush")
		w.flushAll()
		return ErrShutdownTimeout
	}
}

// ErrQueueFull 队列满错误
var ErrQueueFull = errors.New("message queue full")

// ErrShutdownTimeout 关闭超时错误
var ErrShutdownTimeout = errors.New("shutdown timeout")
