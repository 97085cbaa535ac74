package dao

import (
	"github.com/utrading/utrading-dex-monitor/internal/state"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// LoadBook 服务重启后从数据库恢复内存订单簿
// 先回放挂单，再回放撤单和成交，保持终态互斥
func LoadBook(book *state.Book) error {
	orders, err := Order().All()
	if err != nil {
		return err
	}
	for _, o := range orders {
		book.ApplyOrder(o)
	}

	cancels, err := Cancellation().All()
	if err != nil {
		return err
	}
	for _, o := range cancels {
		book.ApplyCancel(o)
	}

	trades, err := Trade().All()
	if err != nil {
		return err
	}
	for _, o := range trades {
		book.ApplyTrade(o)
	}

	logger.Info().
		Int("orders", len(orders)).
		Int("cancellations", len(cancels)).
		Int("trades", len(trades)).
		Msg("order book restored from database")

	return nil
}
