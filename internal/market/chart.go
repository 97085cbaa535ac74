package market

import (
	"time"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// DefaultCandleInterval 默认按天聚合
const DefaultCandleInterval = 24 * time.Hour

// BuildPriceChart 选中交易对的价格图表视图
// interval <= 0 时使用默认天级时间桶
func BuildPriceChart(filled []models.RawOrder, pair TokenPair, interval time.Duration) (PriceChart, error) {
	if !pair.Valid() {
		return PriceChart{}, ErrMissingPair
	}
	if interval <= 0 {
		interval = DefaultCandleInterval
	}

	orders := filterByPair(filled, pair)
	sortRawByTimestampAsc(orders)

	decorated := decorateAll(orders, pair, "price_chart")

	var lastPrice, secondLastPrice float64
	if n := len(decorated); n >= 1 {
		lastPrice = decorated[n-1].TokenPrice
		if n >= 2 {
			secondLastPrice = decorated[n-2].TokenPrice
		}
	}

	change := "-"
	if lastPrice >= secondLastPrice {
		change = "+"
	}

	return PriceChart{
		LastPrice:       lastPrice,
		LastPriceChange: change,
		Series: []CandleSeries{
			{Data: BuildCandles(decorated, interval)},
		},
	}, nil
}

// BuildCandles 把时间升序的成交序列聚合成 OHLC 蜡烛
//
// 桶按 interval 对 Unix 时间戳截断（UTC），序列为空返回空切片；
// open 取桶内第一笔、close 取最后一笔，high/low 取桶内极值，
// 桶顺序保持首次出现顺序
func BuildCandles(decorated []DecoratedOrder, interval time.Duration) []Candle {
	if len(decorated) == 0 {
		return []Candle{}
	}

	step := int64(interval / time.Second)
	if step <= 0 {
		step = int64(DefaultCandleInterval / time.Second)
	}

	candles := make([]Candle, 0)
	index := make(map[int64]int)

	for _, d := range decorated {
		bucket := d.Timestamp - d.Timestamp%step

		i, ok := index[bucket]
		if !ok {
			index[bucket] = len(candles)
			candles = append(candles, Candle{
				X: bucket,
				Y: [4]float64{d.TokenPrice, d.TokenPrice, d.TokenPrice, d.TokenPrice},
			})
			continue
		}

		c := &candles[i]
		if d.TokenPrice > c.Y[1] {
			c.Y[1] = d.TokenPrice
		}
		if d.TokenPrice < c.Y[2] {
			c.Y[2] = d.TokenPrice
		}
		c.Y[3] = d.TokenPrice
	}

	return candles
}
