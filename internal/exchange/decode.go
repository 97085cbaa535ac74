package exchange

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/valyala/fastjson"

	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/processor"
)

const wordSize = 32

// parseLog 解析 eth_subscription 通知里的日志对象
// 热路径使用 fastjson，避免反射反序列化
func parseLog(v *fastjson.Value) (EventLog, error) {
	topics := v.GetArray("topics")
	if len(topics) == 0 {
		return EventLog{}, fmt.Errorf("log without topics")
	}

	data, err := hexutil.Decode(string(v.GetStringBytes("data")))
	if err != nil {
		return EventLog{}, fmt.Errorf("decode log data: %w", err)
	}

	blockNumber, err := hexutil.DecodeUint64(string(v.GetStringBytes("blockNumber")))
	if err != nil {
		return EventLog{}, fmt.Errorf("decode block number: %w", err)
	}

	return EventLog{
		Address:     common.HexToAddress(string(v.GetStringBytes("address"))),
		Topic:       common.HexToHash(string(topics[0].GetStringBytes())),
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      string(v.GetStringBytes("transactionHash")),
		Removed:     v.GetBool("removed"),
	}, nil
}

// word 取 data 段第 i 个 32 字节字
func word(data []byte, i int) ([]byte, error) {
	start := i * wordSize
	end := start + wordSize
	if end > len(data) {
		return nil, fmt.Errorf("log data too short: want word %d, have %d bytes", i, len(data))
	}
	return data[start:end], nil
}

// uintWord uint256 字段保留十进制字符串，不丢精度
func uintWord(data []byte, i int) (string, error) {
	w, err := word(data, i)
	if err != nil {
		return "", err
	}
	return new(big.Int).SetBytes(w).String(), nil
}

// intWord 时间戳等小数值字段
func intWord(data []byte, i int) (int64, error) {
	w, err := word(data, i)
	if err != nil {
		return 0, err
	}
	return new(big.Int).SetBytes(w).Int64(), nil
}

// addrWord address 字段取字的低 20 字节
func addrWord(data []byte, i int) (string, error) {
	w, err := word(data, i)
	if err != nil {
		return "", err
	}
	return common.BytesToAddress(w).Hex(), nil
}

// decodeCommon 三个事件共用的前六个字段
func decodeCommon(data []byte) (models.RawOrder, error) {
	var o models.RawOrder
	var err error

	if o.OrderID, err = uintWord(data, 0); err != nil {
		return o, err
	}
	if o.User, err = addrWord(data, 1); err != nil {
		return o, err
	}
	if o.TokenGet, err = addrWord(data, 2); err != nil {
		return o, err
	}
	if o.AmountGet, err = uintWord(data, 3); err != nil {
		return o, err
	}
	if o.TokenGive, err = addrWord(data, 4); err != nil {
		return o, err
	}
	if o.AmountGive, err = uintWord(data, 5); err != nil {
		return o, err
	}

	return o, nil
}

// decodeOrderFields Order/Cancel 事件，第七个字是时间戳
func decodeOrderFields(data []byte) (models.RawOrder, error) {
	o, err := decodeCommon(data)
	if err != nil {
		return o, err
	}

	if o.Timestamp, err = intWord(data, 6); err != nil {
		return o, err
	}

	return o, nil
}

// decodeTradeFields Trade 事件比挂单事件多一个 creator 字段
// user 是吃单方，creator 是原始挂单方
func decodeTradeFields(data []byte) (models.RawOrder, error) {
	o, err := decodeCommon(data)
	if err != nil {
		return o, err
	}

	if o.Creator, err = addrWord(data, 6); err != nil {
		return o, err
	}
	if o.Timestamp, err = intWord(data, 7); err != nil {
		return o, err
	}

	return o, nil
}

// DecodeEvent 把合约日志转成处理管线消息
// 未知主题返回 nil 消息，调用方直接忽略
func DecodeEvent(lg EventLog) (processor.Message, error) {
	switch lg.Topic {
	case TopicOrder:
		o, err := decodeOrderFields(lg.Data)
		if err != nil {
			return nil, fmt.Errorf("decode order event: %w", err)
		}
		return processor.OrderCreatedMessage{Order: o, BlockNumber: lg.BlockNumber, TxHash: lg.TxHash}, nil

	case TopicCancel:
		o, err := decodeOrderFields(lg.Data)
		if err != nil {
			return nil, fmt.Errorf("decode cancel event: %w", err)
		}
		return processor.OrderCancelledMessage{Order: o, BlockNumber: lg.BlockNumber, TxHash: lg.TxHash}, nil

	case TopicTrade:
		o, err := decodeTradeFields(lg.Data)
		if err != nil {
			return nil, fmt.Errorf("decode trade event: %w", err)
		}
		return processor.TradeMessage{Order: o, BlockNumber: lg.BlockNumber, TxHash: lg.TxHash}, nil

	default:
		return nil, nil
	}
}
