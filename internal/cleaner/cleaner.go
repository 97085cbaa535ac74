package cleaner

import (
	"time"

	"gorm.io/gorm"

	"github.com/utrading/utrading-dex-monitor/internal/dao"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// Cleaner 数据清理器，定时清理历史数据
type Cleaner struct {
	db        *gorm.DB
	interval  time.Duration // 清理间隔
	retention time.Duration // 历史数据保留时长
	done      chan struct{} // 停止信号
}

// NewCleaner 创建清理器
func NewCleaner(db *gorm.DB, retention time.Duration) *Cleaner {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Cleaner{
		db:        db,
		interval:  1 * time.Hour, // 固定 1 小时
		retention: retention,
		done:      make(chan struct{}),
	}
}

// Start 启动清理任务
func (c *Cleaner) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		logger.Info().Msg("cleaner started")

		// 启动时立即执行一次
		c.clean()

		for {
			select {
			case <-ticker.C:
				c.clean()
			case <-c.done:
				logger.Info().Msg("cleaner stopped")
				return
			}
		}
	}()
}

// Stop 停止清理器
func (c *Cleaner) Stop() {
	close(c.done)
}

// clean 执行清理任务
//
// 只清理已终结的订单：挂单记录必须和对应的撤单/成交记录一起删除，
// 否则重启回放时缺少终结事件，已关闭的订单会被当成开放订单
func (c *Cleaner) clean() {
	logger.Debug().Msg("running cleanup task")

	if err := c.cleanClosedOrders(); err != nil {
		logger.Error().Err(err).Msg("clean closed orders failed")
	}

	if err := c.capTrades(); err != nil {
		logger.Error().Err(err).Msg("cap trades failed")
	}
}

// cleanClosedOrders 清理保留期之前已撤销或已成交的订单
// 先删挂单记录（终结事件还在，能定位要删的订单），再删终结事件本身
func (c *Cleaner) cleanClosedOrders() error {
	cutoff := time.Now().Add(-c.retention)
	ts := cutoff.Unix()

	result := c.db.Exec(`DELETE FROM dex_orders WHERE order_id IN (
		SELECT order_id FROM dex_cancellations WHERE timestamp < ?
		UNION
		SELECT order_id FROM dex_trades WHERE timestamp < ?)`, ts, ts)
	if result.Error != nil {
		return result.Error
	}

	cancels, err := dao.Cancellation().DeleteOld(cutoff)
	if err != nil {
		return err
	}
	trades, err := dao.Trade().DeleteOld(cutoff)
	if err != nil {
		return err
	}

	if cancels > 0 || trades > 0 {
		logger.Info().
			Int64("orders", result.RowsAffected).
			Int64("cancellations", cancels).
			Int64("trades", trades).
			Time("cutoff", cutoff).
			Msg("cleaned closed orders past retention")
	}

	return nil
}

// capTrades 数量兜底：成交超过 50 万条时删除最旧的
func (c *Cleaner) capTrades() error {
	const maxTrades = 500000

	count, err := dao.Trade().Count()
	if err != nil {
		return err
	}
	if count <= maxTrades {
		return nil
	}

	excess := count - maxTrades

	// MySQL 不支持 IN 子查询带 LIMIT，包一层派生表
	result := c.db.Exec(`DELETE FROM dex_orders WHERE order_id IN (
		SELECT order_id FROM (
			SELECT order_id FROM dex_trades ORDER BY timestamp ASC LIMIT ?
		) oldest)`, excess)
	if result.Error != nil {
		return result.Error
	}

	deleted, err := dao.Trade().DeleteOldest(excess)
	if err != nil {
		return err
	}

	logger.Info().
		Int64("deleted", deleted).
		Int64("total", count).
		Int64("limit", maxTrades).
		Msg("cleaned excess trades by count")

	return nil
}
