package processor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-dex-monitor/internal/cache"
	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/nats"
	"github.com/utrading/utrading-dex-monitor/internal/state"
)

// fakePublisher 收集发布的信号
type fakePublisher struct {
	mu      sync.Mutex
	signals []*nats.TradeSignal
}

func (f *fakePublisher) PublishTradeSignal(signal *nats.TradeSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, signal)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signals)
}

func testMarkets() []market.TokenPair {
	return []market.TokenPair{
		{
			Base:  market.Token{Symbol: "DNV", Address: "0x1111", Decimals: 18},
			Quote: market.Token{Symbol: "mETH", Address: "0x2222", Decimals: 18},
		},
	}
}

func newTestProcessor(t *testing.T, pub Publisher) (*EventProcessor, *state.Book) {
	t.Helper()
	book := state.NewBook()
	p := NewEventProcessor(book, pub, nil, cache.NewDedupCache(time.Minute), testMarkets())
	t.Cleanup(p.Stop)
	return p, book
}

func TestEventProcessor_OrderCreated(t *testing.T) {
	p, book := newTestProcessor(t, nil)

	err := p.HandleMessage(OrderCreatedMessage{Order: rawOrder("ep-1"), TxHash: "0x01"})
	require.NoError(t, err)

	snap := book.Snapshot()
	require.Len(t, snap.AllOrders, 1)
	assert.Equal(t, "ep-1", snap.AllOrders[0].OrderID)

	// 重复事件不推进版本号
	rev := book.Revision()
	err = p.HandleMessage(OrderCreatedMessage{Order: rawOrder("ep-1"), TxHash: "0x01"})
	require.NoError(t, err)
	assert.Equal(t, rev, book.Revision())
}

func TestEventProcessor_CancelAfterTradeRejected(t *testing.T) {
	p, book := newTestProcessor(t, nil)

	o := rawOrder("ep-2")
	require.NoError(t, p.HandleMessage(OrderCreatedMessage{Order: o}))
	require.NoError(t, p.HandleMessage(TradeMessage{Order: o}))
	require.NoError(t, p.HandleMessage(OrderCancelledMessage{Order: o}))

	snap := book.Snapshot()
	assert.Len(t, snap.FilledOrders, 1)
	assert.Empty(t, snap.CancelledOrders)
}

func TestEventProcessor_TradeSignal(t *testing.T) {
	pub := &fakePublisher{}
	p, _ := newTestProcessor(t, pub)

	o := rawOrder("ep-3")
	o.Creator = "0xcccc"
	require.NoError(t, p.HandleMessage(TradeMessage{Order: o}))

	require.Eventually(t, func() bool {
		return pub.count() == 1
	}, time.Second, 10*time.Millisecond)

	sig := pub.signals[0]
	assert.Equal(t, "DNV/mETH", sig.Symbol)
	assert.Equal(t, "ep-3", sig.OrderID)
	assert.Equal(t, "0xcccc", sig.Maker)
	assert.Equal(t, "0xaaaa", sig.Taker)
	// 付出 quote 换 base，挂单方向是买入
	assert.Equal(t, "buy", sig.Side)
	assert.Equal(t, 2.0, sig.Price)
	assert.Equal(t, "1", sig.Amount)
}

func TestEventProcessor_TradeOutsideMarketsNoSignal(t *testing.T) {
	pub := &fakePublisher{}
	p, book := newTestProcessor(t, pub)

	o := rawOrder("ep-4")
	o.TokenGet = "0x9999"
	require.NoError(t, p.HandleMessage(TradeMessage{Order: o}))

	// 事件仍然应用到订单簿
	assert.Len(t, book.Snapshot().FilledOrders, 1)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, pub.count())
}

func TestEventProcessor_TradeWithZeroAmountNoSignal(t *testing.T) {
	pub := &fakePublisher{}
	p, book := newTestProcessor(t, pub)

	// base 数量为零，价格是 Inf 哨兵值，信号无法编码成 JSON
	o := rawOrder("ep-5")
	o.AmountGet = "0"
	require.NoError(t, p.HandleMessage(TradeMessage{Order: o}))

	// 事件仍然应用到订单簿
	assert.Len(t, book.Snapshot().FilledOrders, 1)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, pub.count())
}

func TestEventProcessor_MissingOrderID(t *testing.T) {
	p, _ := newTestProcessor(t, nil)

	err := p.HandleMessage(OrderCreatedMessage{Order: models.RawOrder{}, TxHash: "0xff"})
	assert.Error(t, err)
}
