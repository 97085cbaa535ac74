package models

// RawOrder 交易所合约事件的原始订单数据
// OrderID 和数量字段保存为十进制字符串，避免 uint256 精度丢失
type RawOrder struct {
	OrderID    string `gorm:"column:order_id;type:varchar(78);not null;uniqueIndex" json:"order_id"`
	User       string `gorm:"column:user;type:varchar(42);not null;index" json:"user"`
	Creator    string `gorm:"column:creator;type:varchar(42);not null;default:'';index" json:"creator"`
	TokenGet   string `gorm:"column:token_get;type:varchar(42);not null;index" json:"token_get"`
	AmountGet  string `gorm:"column:amount_get;type:varchar(78);not null" json:"amount_get"`
	TokenGive  string `gorm:"column:token_give;type:varchar(42);not null;index" json:"token_give"`
	AmountGive string `gorm:"column:amount_give;type:varchar(78);not null" json:"amount_give"`
	Timestamp  int64  `gorm:"column:timestamp;not null;index" json:"timestamp"`
}
