package processor

import (
	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// Message 消息接口
type Message interface {
	Type() string
}

// OrderCreatedMessage 挂单事件消息
type OrderCreatedMessage struct {
	Order       models.RawOrder
	BlockNumber uint64
	TxHash      string
}

func (m OrderCreatedMessage) Type() string { return "order_created" }

// OrderCancelledMessage 撤单事件消息
type OrderCancelledMessage struct {
	Order       models.RawOrder
	BlockNumber uint64
	TxHash      string
}

func (m OrderCancelledMessage) Type() string { return "order_cancelled" }

// TradeMessage 成交事件消息
// Order.User 是吃单方，Order.Creator 是原始挂单方
type TradeMessage struct {
	Order       models.RawOrder
	BlockNumber uint64
	TxHash      string
}

func (m TradeMessage) Type() string { return "trade" }
