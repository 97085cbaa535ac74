package dao

import (
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

type CancellationDAO struct {
	db *gorm.DB
}

var (
	_cancellation     *CancellationDAO
	_cancellationOnce sync.Once
)

// InitCancellationDAO 初始化 CancellationDAO
func InitCancellationDAO(db *gorm.DB) {
	_cancellationOnce.Do(func() {
		_cancellation = &CancellationDAO{
			db: db,
		}
	})
}

// Cancellation 获取 CancellationDAO 单例
func Cancellation() *CancellationDAO {
	return _cancellation
}

// BatchUpsert 批量写入撤单事件，order_id 冲突时忽略
func (d *CancellationDAO) BatchUpsert(cancels []*models.DexCancellation) error {
	if len(cancels) == 0 {
		return nil
	}

	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(cancels).Error
}

// All 按时间升序加载全部撤单的原始订单字段
func (d *CancellationDAO) All() ([]models.RawOrder, error) {
	var orders []models.RawOrder
	err := d.db.Model(&models.DexCancellation{}).
		Order("timestamp ASC").
		Find(&orders).Error
	return orders, err
}

// DeleteOld 清理过期数据（早于指定时间的记录）
func (d *CancellationDAO) DeleteOld(before time.Time) (int64, error) {
	result := d.db.Where("timestamp < ?", before.Unix()).
		Delete(&models.DexCancellation{})
	return result.RowsAffected, result.Error
}
