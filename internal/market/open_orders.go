package market

import (
	"github.com/utrading/utrading-dex-monitor/internal/models"
)

// OpenOrders 计算当前未结订单集合
// 返回 all 中订单号既不在 cancelled 也不在 filled 的子集
// 订单号按十进制字符串比较，uint256 级别的 id 不会因数值转换丢失精度
func OpenOrders(all, cancelled, filled []models.RawOrder) []models.RawOrder {
	if len(all) == 0 {
		return nil
	}

	closed := make(map[string]struct{}, len(cancelled)+len(filled))
	for _, o := range cancelled {
		closed[o.OrderID] = struct{}{}
	}
	for _, o := range filled {
		closed[o.OrderID] = struct{}{}
	}

	open := make([]models.RawOrder, 0, len(all))
	for _, o := range all {
		if _, ok := closed[o.OrderID]; ok {
			continue
		}
		open = append(open, o)
	}

	return open
}
