package state

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

func rawOrder(id string) models.RawOrder {
	return models.RawOrder{
		OrderID:    id,
		User:       "0xabc",
		TokenGet:   "0x1111111111111111111111111111111111111111",
		AmountGet:  "1000000000000000000",
		TokenGive:  "0x2222222222222222222222222222222222222222",
		AmountGive: "2000000000000000000",
		Timestamp:  1700000000,
	}
}

func TestBook_ApplyAndSnapshot(t *testing.T) {
	book := NewBook()

	assert.True(t, book.ApplyOrder(rawOrder("1")))
	assert.True(t, book.ApplyOrder(rawOrder("2")))
	assert.True(t, book.ApplyCancel(rawOrder("1")))
	assert.True(t, book.ApplyTrade(rawOrder("2")))

	snap := book.Snapshot()
	assert.Len(t, snap.AllOrders, 2)
	assert.Len(t, snap.CancelledOrders, 1)
	assert.Len(t, snap.FilledOrders, 1)
	assert.Equal(t, uint64(4), snap.Revision)
}

func TestBook_DuplicateRejected(t *testing.T) {
	book := NewBook()

	assert.True(t, book.ApplyOrder(rawOrder("1")))
	assert.False(t, book.ApplyOrder(rawOrder("1")))

	// 重复写入不推进修订号
	assert.Equal(t, uint64(1), book.Revision())
}

func TestBook_TerminalStatesExclusive(t *testing.T) {
	book := NewBook()
	book.ApplyOrder(rawOrder("1"))
	book.ApplyOrder(rawOrder("2"))

	// 成交后撤单被拒绝
	assert.True(t, book.ApplyTrade(rawOrder("1")))
	assert.False(t, book.ApplyCancel(rawOrder("1")))

	// 撤单后成交被拒绝
	assert.True(t, book.ApplyCancel(rawOrder("2")))
	assert.False(t, book.ApplyTrade(rawOrder("2")))

	snap := book.Snapshot()
	assert.Len(t, snap.CancelledOrders, 1)
	assert.Len(t, snap.FilledOrders, 1)
}

func TestBook_EmptyOrderIDRejected(t *testing.T) {
	book := NewBook()
	assert.False(t, book.ApplyOrder(models.RawOrder{}))
	assert.False(t, book.ApplyCancel(models.RawOrder{}))
	assert.False(t, book.ApplyTrade(models.RawOrder{}))
	assert.Equal(t, uint64(0), book.Revision())
}

func TestBook_SubscribeNotify(t *testing.T) {
	book := NewBook()

	id, ch := book.Subscribe()
	defer book.Unsubscribe(id)

	book.ApplyOrder(rawOrder("1"))

	select {
	case rev := <-ch:
		assert.Equal(t, uint64(1), rev)
	case <-time.After(time.Second):
		t.Fatal("no revision notification received")
	}
}

func TestBook_UnsubscribeClosesChannel(t *testing.T) {
	book := NewBook()

	id, ch := book.Subscribe()
	book.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open)

	// 注销后写入不会 panic
	book.ApplyOrder(rawOrder("1"))
}

func TestBook_ConcurrentApply(t *testing.T) {
	book := NewBook()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				book.ApplyOrder(rawOrder(strconv.Itoa(n*1000 + j)))
			}
		}(i)
	}
	wg.Wait()

	snap := book.Snapshot()
	assert.Len(t, snap.AllOrders, 1000)
	assert.Equal(t, uint64(1000), snap.Revision)
}
