package exchange

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// 交易所合约事件签名主题
// 三个事件的参数都不带 indexed，全部字段在 data 段按 32 字节对齐
var (
	TopicOrder  = crypto.Keccak256Hash([]byte("Order(uint256,address,address,uint256,address,uint256,uint256)"))
	TopicCancel = crypto.Keccak256Hash([]byte("Cancel(uint256,address,address,uint256,address,uint256,uint256)"))
	TopicTrade  = crypto.Keccak256Hash([]byte("Trade(uint256,address,address,uint256,address,uint256,address,uint256)"))
)

// EventLog 订阅推送里的单条合约日志
type EventLog struct {
	Address     common.Address
	Topic       common.Hash
	Data        []byte
	BlockNumber uint64
	TxHash      string
	Removed     bool
}
