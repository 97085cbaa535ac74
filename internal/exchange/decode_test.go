package exchange

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/utrading/utrading-dex-monitor/internal/processor"
)

const (
	userAddr    = "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
	creatorAddr = "0xBBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"
	getAddr     = "0x1111111111111111111111111111111111111111"
	giveAddr    = "0x2222222222222222222222222222222222222222"
)

// encodeWords 把字段按 32 字节对齐拼成 data 段
func encodeWords(t *testing.T, words ...interface{}) []byte {
	t.Helper()
	var out []byte
	for _, w := range words {
		buf := make([]byte, 32)
		switch v := w.(type) {
		case string: // 地址
			copy(buf[12:], common.HexToAddress(v).Bytes())
		case *big.Int:
			b := v.Bytes()
			copy(buf[32-len(b):], b)
		case int64:
			b := big.NewInt(v).Bytes()
			copy(buf[32-len(b):], b)
		default:
			t.Fatalf("unsupported word type %T", w)
		}
		out = append(out, buf...)
	}
	return out
}

func orderEventData(t *testing.T, id int64) []byte {
	amountGet, _ := new(big.Int).SetString("1000000000000000000", 10)
	amountGive, _ := new(big.Int).SetString("2000000000000000000", 10)
	return encodeWords(t,
		big.NewInt(id), userAddr, getAddr, amountGet, giveAddr, amountGive, int64(1700000000),
	)
}

func TestDecodeEvent_Order(t *testing.T) {
	lg := EventLog{
		Topic:       TopicOrder,
		Data:        orderEventData(t, 42),
		BlockNumber: 123,
		TxHash:      "0xdead",
	}

	msg, err := DecodeEvent(lg)
	require.NoError(t, err)

	m, ok := msg.(processor.OrderCreatedMessage)
	require.True(t, ok)

	assert.Equal(t, "42", m.Order.OrderID)
	assert.Equal(t, common.HexToAddress(userAddr).Hex(), m.Order.User)
	assert.Equal(t, common.HexToAddress(getAddr).Hex(), m.Order.TokenGet)
	assert.Equal(t, "1000000000000000000", m.Order.AmountGet)
	assert.Equal(t, common.HexToAddress(giveAddr).Hex(), m.Order.TokenGive)
	assert.Equal(t, "2000000000000000000", m.Order.AmountGive)
	assert.Equal(t, int64(1700000000), m.Order.Timestamp)
	assert.Equal(t, uint64(123), m.BlockNumber)
	assert.Equal(t, "0xdead", m.TxHash)
}

func TestDecodeEvent_Cancel(t *testing.T) {
	lg := EventLog{Topic: TopicCancel, Data: orderEventData(t, 7)}

	msg, err := DecodeEvent(lg)
	require.NoError(t, err)

	m, ok := msg.(processor.OrderCancelledMessage)
	require.True(t, ok)
	assert.Equal(t, "7", m.Order.OrderID)
}

func TestDecodeEvent_Trade(t *testing.T) {
	amountGet, _ := new(big.Int).SetString("1000000000000000000", 10)
	amountGive, _ := new(big.Int).SetString("500000000000000000", 10)
	data := encodeWords(t,
		big.NewInt(9), userAddr, getAddr, amountGet, giveAddr, amountGive,
		creatorAddr, int64(1700000100),
	)

	msg, err := DecodeEvent(EventLog{Topic: TopicTrade, Data: data})
	require.NoError(t, err)

	m, ok := msg.(processor.TradeMessage)
	require.True(t, ok)

	assert.Equal(t, "9", m.Order.OrderID)
	// user 是吃单方，creator 是挂单方
	assert.Equal(t, common.HexToAddress(userAddr).Hex(), m.Order.User)
	assert.Equal(t, common.HexToAddress(creatorAddr).Hex(), m.Order.Creator)
	assert.Equal(t, int64(1700000100), m.Order.Timestamp)
}

func TestDecodeEvent_UnknownTopicIgnored(t *testing.T) {
	lg := EventLog{Topic: common.HexToHash("0x01"), Data: orderEventData(t, 1)}

	msg, err := DecodeEvent(lg)
	assert.NoError(t, err)
	assert.Nil(t, msg)
}

func TestDecodeEvent_TruncatedData(t *testing.T) {
	lg := EventLog{Topic: TopicOrder, Data: orderEventData(t, 1)[:64]}

	_, err := DecodeEvent(lg)
	assert.Error(t, err)
}

func TestDecodeEvent_Uint256Precision(t *testing.T) {
	// 超过 float64 精度的订单 id 必须原样保留
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	data := encodeWords(t,
		huge, userAddr, getAddr, big.NewInt(1), giveAddr, big.NewInt(2), int64(1700000000),
	)

	msg, err := DecodeEvent(EventLog{Topic: TopicOrder, Data: data})
	require.NoError(t, err)

	m := msg.(processor.OrderCreatedMessage)
	assert.Equal(t, "123456789012345678901234567890", m.Order.OrderID)
}

func TestParseLog(t *testing.T) {
	data := orderEventData(t, 5)

	raw := `{
		"address": "0x3333333333333333333333333333333333333333",
		"topics": ["` + TopicOrder.Hex() + `"],
		"data": "0x` + hex.EncodeToString(data) + `",
		"blockNumber": "0x10",
		"transactionHash": "0xabc",
		"removed": false
	}`

	v, err := fastjson.Parse(raw)
	require.NoError(t, err)

	lg, err := parseLog(v)
	require.NoError(t, err)

	assert.Equal(t, TopicOrder, lg.Topic)
	assert.Equal(t, uint64(16), lg.BlockNumber)
	assert.Equal(t, "0xabc", lg.TxHash)
	assert.False(t, lg.Removed)
	assert.True(t, strings.EqualFold("0x3333333333333333333333333333333333333333", lg.Address.Hex()))
	assert.Equal(t, data, lg.Data)
}

func TestParseLog_MissingTopics(t *testing.T) {
	v, err := fastjson.Parse(`{"data":"0x","blockNumber":"0x1"}`)
	require.NoError(t, err)

	_, err = parseLog(v)
	assert.Error(t, err)
}
