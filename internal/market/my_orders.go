package market

import (
	"sort"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// MyOpenOrders 指定账户在选中交易对上的未结订单，按时间降序
func MyOpenOrders(account string, open []models.RawOrder, pair TokenPair) ([]OpenOrder, error) {
	if !pair.Valid() {
		return nil, ErrMissingPair
	}

	orders := filterByPair(filterByUser(open, account), pair)
	decorated := decorateAll(orders, pair, "my_open_orders")

	out := make([]OpenOrder, 0, len(decorated))
	for _, d := range decorated {
		t := Classify(d.RawOrder, pair)
		out = append(out, OpenOrder{
			DecoratedOrder: d,
			OrderType:      t,
			OrderTypeClass: typeClass(t),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	return out, nil
}

// MyFilledOrders 指定账户参与的成交，按时间降序
//
// 方向以观察账户视角计算：账户是挂单方（Creator）时方向与订单分类一致，
// 账户是吃单方时取反，同一笔成交对双方的买卖语义相反
func MyFilledOrders(account string, filled []models.RawOrder, pair TokenPair) ([]MyFilledOrder, error) {
	if !pair.Valid() {
		return nil, ErrMissingPair
	}

	orders := filterByPair(filterByParticipant(filled, account), pair)
	decorated := decorateAll(orders, pair, "my_filled_orders")

	out := make([]MyFilledOrder, 0, len(decorated))
	for _, d := range decorated {
		t := Classify(d.RawOrder, pair)
		if !sameAddress(d.Creator, account) {
			t = t.Opposite()
		}

		sign := "-"
		if t == OrderTypeBuy {
			sign = "+"
		}

		out = append(out, MyFilledOrder{
			DecoratedOrder: d,
			OrderType:      t,
			OrderClass:     typeClass(t),
			OrderSign:      sign,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	return out, nil
}
