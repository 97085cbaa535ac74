package dao

import (
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

type OrderDAO struct {
	db *gorm.DB
}

var (
	_order     *OrderDAO
	_orderOnce sync.Once
)

// InitOrderDAO 初始化 OrderDAO
func InitOrderDAO(db *gorm.DB) {
	_orderOnce.Do(func() {
		_order = &OrderDAO{
			db: db,
		}
	})
}

// Order 获取 OrderDAO 单例
func Order() *OrderDAO {
	return _order
}

// BatchUpsert 批量写入挂单事件
// 链上事件不可变，order_id 冲突时直接忽略
func (d *OrderDAO) BatchUpsert(orders []*models.DexOrder) error {
	if len(orders) == 0 {
		return nil
	}

	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(orders).Error
}

// All 按时间升序加载全部挂单的原始订单字段
func (d *OrderDAO) All() ([]models.RawOrder, error) {
	var orders []models.RawOrder
	err := d.db.Model(&models.DexOrder{}).
		Order("timestamp ASC").
		Find(&orders).Error
	return orders, err
}

// Count 挂单总数
func (d *OrderDAO) Count() (int64, error) {
	var count int64
	err := d.db.Model(&models.DexOrder{}).Count(&count).Error
	return count, err
}

// DeleteOld 清理过期数据（早于指定时间的记录）
func (d *OrderDAO) DeleteOld(before time.Time) (int64, error) {
	result := d.db.Where("timestamp < ?", before.Unix()).
		Delete(&models.DexOrder{})
	return result.RowsAffected, result.Error
}
