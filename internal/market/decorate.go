package market

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// 价格保留 5 位小数
const pricePrecision = 1e5

// 默认 18 位最小单位（ether 标度）
const defaultTokenDecimals = 18

const timestampLayout = "3:04:05pm Jan 2"

// sameAddress 地址比较忽略校验和大小写
func sameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// givesQuote 订单是否付出 quote 代币换取 base 代币
func givesQuote(o models.RawOrder, pair TokenPair) bool {
	return sameAddress(o.TokenGive, pair.Quote.Address)
}

// scaleAmount 把链上最小单位整数换算成人类可读数量
// 使用十进制精确运算，不经过浮点
func scaleAmount(raw string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d.Shift(-decimals), nil
}

// roundPrice 四舍五入到 5 位小数，Inf/NaN 原样保留
func roundPrice(p float64) float64 {
	return math.Round(p*pricePrecision) / pricePrecision
}

// DecorateOrder 为原始订单补齐展示字段
//
// 方向规则（全部视图统一）：订单付出 quote 代币时，
// base 数量取 AmountGet、quote 数量取 AmountGive；否则相反。
// TokenPrice = token1/token0；token0 为零时结果是 IEEE Inf/NaN 哨兵值，
// 调用方可以照常渲染或过滤，不会 panic。
func DecorateOrder(o models.RawOrder, pair TokenPair) (DecoratedOrder, error) {
	if !pair.Valid() {
		return DecoratedOrder{}, ErrMissingPair
	}
	if o.TokenGet == "" || o.TokenGive == "" {
		return DecoratedOrder{}, fmt.Errorf("order %s: missing token address", o.OrderID)
	}

	baseDecimals := pair.Base.Decimals
	if baseDecimals == 0 {
		baseDecimals = defaultTokenDecimals
	}
	quoteDecimals := pair.Quote.Decimals
	if quoteDecimals == 0 {
		quoteDecimals = defaultTokenDecimals
	}

	var rawBase, rawQuote string
	if givesQuote(o, pair) {
		rawBase, rawQuote = o.AmountGet, o.AmountGive
	} else {
		rawBase, rawQuote = o.AmountGive, o.AmountGet
	}

	token0, err := scaleAmount(rawBase, baseDecimals)
	if err != nil {
		return DecoratedOrder{}, fmt.Errorf("order %s: %w", o.OrderID, err)
	}
	token1, err := scaleAmount(rawQuote, quoteDecimals)
	if err != nil {
		return DecoratedOrder{}, fmt.Errorf("order %s: %w", o.OrderID, err)
	}

	price := roundPrice(token1.InexactFloat64() / token0.InexactFloat64())

	return DecoratedOrder{
		RawOrder:           o,
		Token0Amount:       token0.String(),
		Token1Amount:       token1.String(),
		TokenPrice:         price,
		FormattedTimestamp: time.Unix(o.Timestamp, 0).UTC().Format(timestampLayout),
	}, nil
}

// Classify 按统一方向规则划分买卖：付出 quote 即买入 base
func Classify(o models.RawOrder, pair TokenPair) OrderType {
	if givesQuote(o, pair) {
		return OrderTypeBuy
	}
	return OrderTypeSell
}

// typeClass 买绿卖红
func typeClass(t OrderType) string {
	if t == OrderTypeBuy {
		return ColorGreen
	}
	return ColorRed
}
