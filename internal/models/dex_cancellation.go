package models

import "time"

// DexCancellation 撤单事件（Cancel）
// 保留原始订单字段，撤单后仍可还原订单明细
type DexCancellation struct {
	ID int64 `gorm:"column:id;primaryKey" json:"id"`
	RawOrder

	BlockNumber uint64 `gorm:"column:block_number;not null;index" json:"block_number"`
	TxHash      string `gorm:"column:tx_hash;type:varchar(66);not null" json:"tx_hash"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (DexCancellation) TableName() string {
	return "dex_cancellations"
}
