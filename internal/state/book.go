package state

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/pkg/concurrent"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// Book 原始订单事件的内存状态容器
//
// 三个集合都按订单号索引；每次写入推进修订号并通知订阅者。
// 视图层只消费 Snapshot 返回的副本，Book 本身从不把内部集合暴露出去。
// 终态事件互斥：同一订单号先到的 cancel/trade 生效，后到的另一方被拒绝
type Book struct {
	all       concurrent.Map[string, models.RawOrder]
	cancelled concurrent.Map[string, models.RawOrder]
	filled    concurrent.Map[string, models.RawOrder]

	revision atomic.Uint64

	subMu sync.RWMutex
	subs  map[uuid.UUID]chan uint64
}

// Snapshot 某一修订号下三个集合的一致性副本
type Snapshot struct {
	AllOrders       []models.RawOrder
	CancelledOrders []models.RawOrder
	FilledOrders    []models.RawOrder
	Revision        uint64
}

// NewBook 创建状态容器
func NewBook() *Book {
	return &Book{
		subs: make(map[uuid.UUID]chan uint64),
	}
}

// Revision 当前修订号
func (b *Book) Revision() uint64 {
	return b.revision.Load()
}

// ApplyOrder 记录挂单事件
// 重复订单号直接拒绝
func (b *Book) ApplyOrder(o models.RawOrder) bool {
	if o.OrderID == "" {
		return false
	}
	if _, loaded := b.all.LoadOrStore(o.OrderID, o); loaded {
		return false
	}
	b.bump()
	return true
}

// ApplyCancel 记录撤单事件
// 订单已成交时拒绝（订单不可能既撤销又成交）
func (b *Book) ApplyCancel(o models.RawOrder) bool {
	if o.OrderID == "" {
		return false
	}
	if _, filled := b.filled.Load(o.OrderID); filled {
		logger.Warn().Str("order_id", o.OrderID).Msg("cancel after trade rejected")
		return false
	}
	if _, loaded := b.cancelled.LoadOrStore(o.OrderID, o); loaded {
		return false
	}
	b.bump()
	return true
}

// ApplyTrade 记录成交事件
// 订单已撤销时拒绝
func (b *Book) ApplyTrade(o models.RawOrder) bool {
	if o.OrderID == "" {
		return false
	}
	if _, cancelled := b.cancelled.Load(o.OrderID); cancelled {
		logger.Warn().Str("order_id", o.OrderID).Msg("trade after cancel rejected")
		return false
	}
	if _, loaded := b.filled.LoadOrStore(o.OrderID, o); loaded {
		return false
	}
	b.bump()
	return true
}

// Snapshot 返回三个集合的副本和对应修订号
// 先读修订号再拷贝集合，拷贝期间的并发写会再次推进修订号，
// 下游缓存按修订号失效，读到的组合始终可安全重算
func (b *Book) Snapshot() Snapshot {
	s := Snapshot{
		Revision:        b.revision.Load(),
		AllOrders:       collect(&b.all),
		CancelledOrders: collect(&b.cancelled),
		FilledOrders:    collect(&b.filled),
	}
	return s
}

func collect(m *concurrent.Map[string, models.RawOrder]) []models.RawOrder {
	out := make([]models.RawOrder, 0, m.Len())
	m.Range(func(_ string, o models.RawOrder) bool {
		out = append(out, o)
		return true
	})
	return out
}

// Subscribe 注册修订号通知
// 返回的通道带缓冲，通知不阻塞写入方；慢消费者丢通知不丢数据
func (b *Book) Subscribe() (uuid.UUID, <-chan uint64) {
	id := uuid.New()
	ch := make(chan uint64, 16)

	b.subMu.Lock()
	b.subs[id] = ch
	b.subMu.Unlock()

	return id, ch
}

// Unsubscribe 注销订阅
func (b *Book) Unsubscribe(id uuid.UUID) {
	b.subMu.Lock()
	ch, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.subMu.Unlock()

	if ok {
		close(ch)
	}
}

// bump 推进修订号并通知订阅者
func (b *Book) bump() {
	rev := b.revision.Add(1)

	monitor.SetBookOrders("all", int(b.all.Len()))
	monitor.SetBookOrders("cancelled", int(b.cancelled.Len()))
	monitor.SetBookOrders("filled", int(b.filled.Len()))

	b.subMu.RLock()
	defer b.subMu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- rev:
		default:
		}
	}
}

// Stats 获取统计信息
func (b *Book) Stats() map[string]any {
	b.subMu.RLock()
	subscribers := len(b.subs)
	b.subMu.RUnlock()

	return map[string]any{
		"all_orders":       b.all.Len(),
		"cancelled_orders": b.cancelled.Len(),
		"filled_orders":    b.filled.Len(),
		"revision":         b.revision.Load(),
		"subscribers":      subscribers,
	}
}
