package processor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// countingHandler 记录处理次数的测试处理器
type countingHandler struct {
	count atomic.Int64
	mu    sync.Mutex
	types []string
}

func (h *countingHandler) HandleMessage(msg Message) error {
	h.count.Add(1)
	h.mu.Lock()
	h.types = append(h.types, msg.Type())
	h.mu.Unlock()
	return nil
}

func TestMessageQueue_EnqueueAndProcess(t *testing.T) {
	handler := &countingHandler{}
	q := NewMessageQueue(10, handler)
	q.Start()
	defer q.Stop()

	err := q.Enqueue(OrderCreatedMessage{Order: models.RawOrder{OrderID: "1"}})
	assert.NoError(t, err)
	err = q.Enqueue(TradeMessage{Order: models.RawOrder{OrderID: "2"}})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return handler.count.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMessageQueue_SyncFallbackWhenFull(t *testing.T) {
	handler := &countingHandler{}
	// 队列容量 1 且不启动 worker，第二条消息走同步降级
	q := NewMessageQueue(1, handler)

	err := q.Enqueue(OrderCreatedMessage{Order: models.RawOrder{OrderID: "1"}})
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Size())

	err = q.Enqueue(OrderCreatedMessage{Order: models.RawOrder{OrderID: "2"}})
	assert.NoError(t, err)

	// 第二条已被同步处理
	assert.Equal(t, int64(1), handler.count.Load())
}

func TestMessageQueue_StopDrains(t *testing.T) {
	handler := &countingHandler{}
	q := NewMessageQueue(10, handler)
	q.Start()

	for i := 0; i < 5; i++ {
		_ = q.Enqueue(TradeMessage{Order: models.RawOrder{OrderID: "x"}})
	}

	// Stop 不应阻塞
	done := make(chan struct{})
	go func() {
		q.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue stop blocked")
	}
}

func TestMessage_Types(t *testing.T) {
	assert.Equal(t, "order_created", OrderCreatedMessage{}.Type())
	assert.Equal(t, "order_cancelled", OrderCancelledMessage{}.Type())
	assert.Equal(t, "trade", TradeMessage{}.Type())
}
