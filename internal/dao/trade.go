package dao

import (
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

type TradeDAO struct {
	db *gorm.DB
}

var (
	_trade     *TradeDAO
	_tradeOnce sync.Once
)

// InitTradeDAO 初始化 TradeDAO
func InitTradeDAO(db *gorm.DB) {
	_tradeOnce.Do(func() {
		_trade = &TradeDAO{
			db: db,
		}
	})
}

// Trade 获取 TradeDAO 单例
func Trade() *TradeDAO {
	return _trade
}

// BatchUpsert 批量写入成交事件，order_id 冲突时忽略
func (d *TradeDAO) BatchUpsert(trades []*models.DexTrade) error {
	if len(trades) == 0 {
		return nil
	}

	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(trades).Error
}

// All 按时间升序加载全部成交的原始订单字段
func (d *TradeDAO) All() ([]models.RawOrder, error) {
	var orders []models.RawOrder
	err := d.db.Model(&models.DexTrade{}).
		Order("timestamp ASC").
		Find(&orders).Error
	return orders, err
}

// Count 成交总数
func (d *TradeDAO) Count() (int64, error) {
	var count int64
	err := d.db.Model(&models.DexTrade{}).Count(&count).Error
	return count, err
}

// DeleteOldest 删除最旧的 n 条成交记录
func (d *TradeDAO) DeleteOldest(n int64) (int64, error) {
	// MySQL 的 DELETE 支持 ORDER BY + LIMIT
	result := d.db.Exec(
		"DELETE FROM dex_trades ORDER BY timestamp ASC LIMIT ?", n,
	)
	return result.RowsAffected, result.Error
}

// DeleteOld 清理过期数据（早于指定时间的记录）
func (d *TradeDAO) DeleteOld(before time.Time) (int64, error) {
	result := d.db.Where("timestamp < ?", before.Unix()).
		Delete(&models.DexTrade{})
	return result.RowsAffected, result.Error
}
