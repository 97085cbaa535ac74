package market

import (
	"math"
	"sort"

	"github.com/utrading/utrading-dex-monitor/internal/models"

	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// filterByPair 保留两条腿都只引用选中交易对代币的订单
func filterByPair(orders []models.RawOrder, pair TokenPair) []models.RawOrder {
	out := make([]models.RawOrder, 0, len(orders))
	for _, o := range orders {
		if pair.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// filterByUser 保留指定账户创建的订单
func filterByUser(orders []models.RawOrder, account string) []models.RawOrder {
	out := make([]models.RawOrder, 0, len(orders))
	for _, o := range orders {
		if sameAddress(o.User, account) {
			out = append(out, o)
		}
	}
	return out
}

// filterByParticipant 保留账户作为任意一方参与的成交
// 原始事件里挂单方字段命名不一致（user/creator），两个都认
func filterByParticipant(orders []models.RawOrder, account string) []models.RawOrder {
	out := make([]models.RawOrder, 0, len(orders))
	for _, o := range orders {
		if sameAddress(o.User, account) || sameAddress(o.Creator, account) {
			out = append(out, o)
		}
	}
	return out
}

// decorateAll 批量装饰，坏记录跳过并计数，不中断整个视图
// Inf/NaN 价格无法编码成 JSON，在这里和坏记录一样剔除
func decorateAll(orders []models.RawOrder, pair TokenPair, view string) []DecoratedOrder {
	out := make([]DecoratedOrder, 0, len(orders))
	for _, o := range orders {
		d, err := DecorateOrder(o, pair)
		if err != nil {
			monitor.IncMalformedOrder(view)
			logger.Warn().
				Err(err).
				Str("view", view).
				Str("order_id", o.OrderID).
				Msg("skip malformed order")
			continue
		}
		if math.IsInf(d.TokenPrice, 0) || math.IsNaN(d.TokenPrice) {
			monitor.IncMalformedOrder(view)
			logger.Warn().
				Str("view", view).
				Str("order_id", o.OrderID).
				Msg("skip order with unpriceable amounts")
			continue
		}
		out = append(out, d)
	}
	return out
}

// sortRawByTimestampAsc 按时间升序（稳定，保证同秒成交的处理顺序确定）
func sortRawByTimestampAsc(orders []models.RawOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Timestamp < orders[j].Timestamp
	})
}
