package market

import (
	"sort"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// BuildOrderBook 从未结订单构建盘口视图
// 交易对不完整时返回空盘口和 ErrMissingPair
func BuildOrderBook(open []models.RawOrder, pair TokenPair) (OrderBook, error) {
	if !pair.Valid() {
		return OrderBook{}, ErrMissingPair
	}

	decorated := decorateAll(filterByPair(open, pair), pair, "order_book")

	book := OrderBook{
		BuyOrders:  make([]BookOrder, 0, len(decorated)),
		SellOrders: make([]BookOrder, 0, len(decorated)),
	}

	for _, d := range decorated {
		t := Classify(d.RawOrder, pair)
		bo := BookOrder{
			DecoratedOrder:  d,
			OrderType:       t,
			OrderTypeClass:  typeClass(t),
			OrderFillAction: t.Opposite(),
		}
		if t == OrderTypeBuy {
			book.BuyOrders = append(book.BuyOrders, bo)
		} else {
			book.SellOrders = append(book.SellOrders, bo)
		}
	}

	// 两侧都按价格降序
	sort.SliceStable(book.BuyOrders, func(i, j int) bool {
		return book.BuyOrders[i].TokenPrice > book.BuyOrders[j].TokenPrice
	})
	sort.SliceStable(book.SellOrders, func(i, j int) bool {
		return book.SellOrders[i].TokenPrice > book.SellOrders[j].TokenPrice
	})

	return book, nil
}
