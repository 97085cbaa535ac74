package market

import (
	"sort"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// TradeHistory 选中交易对的成交历史
//
// 涨跌着色必须在时间升序序列上计算（相对前一笔成交），
// 第一笔没有前驱按上涨处理；着色完成后再按时间降序返回给展示层
func TradeHistory(filled []models.RawOrder, pair TokenPair) ([]FilledOrder, error) {
	if !pair.Valid() {
		return nil, ErrMissingPair
	}

	orders := filterByPair(filled, pair)
	sortRawByTimestampAsc(orders)

	decorated := decorateAll(orders, pair, "trade_history")

	out := make([]FilledOrder, 0, len(decorated))
	prevPrice := 0.0
	for i, d := range decorated {
		class := ColorGreen
		if i > 0 && d.TokenPrice < prevPrice {
			class = ColorRed
		}
		prevPrice = d.TokenPrice

		out = append(out, FilledOrder{
			DecoratedOrder:  d,
			TokenPriceClass: class,
		})
	}

	// 展示层要求最近成交在前
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	return out, nil
}
