package models

import "time"

// DexTrade 成交事件（Trade）
// RawOrder.User 是吃单方，RawOrder.Creator 是原始挂单方；两者视角的买卖方向相反
type DexTrade struct {
	ID int64 `gorm:"column:id;primaryKey" json:"id"`
	RawOrder

	BlockNumber uint64 `gorm:"column:block_number;not null;index" json:"block_number"`
	TxHash      string `gorm:"column:tx_hash;type:varchar(66);not null" json:"tx_hash"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DexTrade) TableName() string {
	return "dex_trades"
}
