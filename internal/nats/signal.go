package nats

import (
	"encoding/json"

	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

const TopicDexTradeSignal = "dex_trade_signal"

// TradeSignal 成交信号消息
type TradeSignal struct {
	Symbol    string  `json:"symbol"`   // 交易对，如 DNV/mETH
	OrderID   string  `json:"order_id"` // 被吃掉的订单 id（十进制字符串）
	Maker     string  `json:"maker"`    // 挂单方地址
	Taker     string  `json:"taker"`    // 吃单方地址
	Side      string  `json:"side"`     // buy/sell（挂单方向）
	Price     float64 `json:"price"`    // 成交价（quote/base）
	Amount    string  `json:"amount"`   // base 数量（十进制字符串）
	Timestamp int64   `json:"timestamp"`
}

// Marshal 序列化信号
func (s *TradeSignal) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		logger.Error().Err(err).Msg("marshal signal failed")
		return nil, err
	}
	return data, nil
}
