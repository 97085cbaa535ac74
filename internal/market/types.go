package market

import (
	"errors"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// 行情展示颜色
const (
	ColorGreen = "#25CE8F"
	ColorRed   = "#F45353"
)

// OrderType 订单方向
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// Opposite 返回相反方向
func (t OrderType) Opposite() OrderType {
	if t == OrderTypeBuy {
		return OrderTypeSell
	}
	return OrderTypeBuy
}

// ErrMissingPair 交易对不完整，所有视图返回空值
var ErrMissingPair = errors.New("market: token pair missing")

// Token 交易对中的单个代币描述
type Token struct {
	Symbol   string `json:"symbol" toml:"symbol"`
	Address  string `json:"address" toml:"address"`
	Decimals int32  `json:"decimals" toml:"decimals"`
}

// TokenPair 交易对
// Base 是被定价资产（token0），Quote 是计价资产（token1）
type TokenPair struct {
	Base  Token `json:"base" toml:"base"`
	Quote Token `json:"quote" toml:"quote"`
}

// Valid 两个代币地址均存在时交易对才可用
func (p TokenPair) Valid() bool {
	return p.Base.Address != "" && p.Quote.Address != ""
}

// Symbol 返回 "BASE/QUOTE" 形式的交易对名称
func (p TokenPair) Symbol() string {
	return p.Base.Symbol + "/" + p.Quote.Symbol
}

// Matches 订单两条腿是否都只引用本交易对的代币
func (p TokenPair) Matches(o models.RawOrder) bool {
	getOK := sameAddress(o.TokenGet, p.Base.Address) || sameAddress(o.TokenGet, p.Quote.Address)
	giveOK := sameAddress(o.TokenGive, p.Base.Address) || sameAddress(o.TokenGive, p.Quote.Address)
	return getOK && giveOK
}

// DecoratedOrder 原始订单加上展示字段
// Token0Amount 恒为 base 数量，Token1Amount 恒为 quote 数量，
// 与订单本身的 give/get 方向无关
type DecoratedOrder struct {
	models.RawOrder

	Token0Amount       string  `json:"token0_amount"`
	Token1Amount       string  `json:"token1_amount"`
	TokenPrice         float64 `json:"token_price"`
	FormattedTimestamp string  `json:"formatted_timestamp"`
}

// BookOrder 盘口视图中的订单
type BookOrder struct {
	DecoratedOrder

	OrderType       OrderType `json:"order_type"`
	OrderTypeClass  string    `json:"order_type_class"`
	OrderFillAction OrderType `json:"order_fill_action"`
}

// OpenOrder 用户未成交订单视图
type OpenOrder struct {
	DecoratedOrder

	OrderType      OrderType `json:"order_type"`
	OrderTypeClass string    `json:"order_type_class"`
}

// FilledOrder 成交历史视图，TokenPriceClass 标记相对前一笔成交的涨跌
type FilledOrder struct {
	DecoratedOrder

	TokenPriceClass string `json:"token_price_class"`
}

// MyFilledOrder 用户成交视图
// OrderType 以观察账户视角计算，吃单方与挂单方方向相反
type MyFilledOrder struct {
	DecoratedOrder

	OrderType  OrderType `json:"order_type"`
	OrderClass string    `json:"order_class"`
	OrderSign  string    `json:"order_sign"`
}

// OrderBook 盘口：买卖两侧各自按价格降序
type OrderBook struct {
	BuyOrders  []BookOrder `json:"buy_orders"`
	SellOrders []BookOrder `json:"sell_orders"`
}

// Candle 单个时间桶的 OHLC
type Candle struct {
	X int64      `json:"x"` // 桶起始时间（Unix 秒）
	Y [4]float64 `json:"y"` // open, high, low, close
}

// CandleSeries 图表序列
type CandleSeries struct {
	Data []Candle `json:"data"`
}

// PriceChart 价格图表视图
// LastPrice 保留数值，涨跌符号单独放在 LastPriceChange
type PriceChart struct {
	LastPrice       float64        `json:"last_price"`
	LastPriceChange string         `json:"last_price_change"` // "+" 或 "-"
	Series          []CandleSeries `json:"series"`
}
