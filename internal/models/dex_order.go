package models

import "time"

// DexOrder 挂单事件（Order）
type DexOrder struct {
	ID int64 `gorm:"column:id;primaryKey" json:"id"`
	RawOrder

	BlockNumber uint64 `gorm:"column:block_number;not null;index" json:"block_number"`
	TxHash      string `gorm:"column:tx_hash;type:varchar(66);not null" json:"tx_hash"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DexOrder) TableName() string {
	return "dex_orders"
}
