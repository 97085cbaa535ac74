package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

func TestTradeHistory_RisingPricesAllGreen(t *testing.T) {
	trades := []models.RawOrder{
		buyOrder("1", 100, "1", "1"),   // 1.0
		buyOrder("2", 200, "1", "1.1"), // 1.1
		buyOrder("3", 300, "1", "1.2"), // 1.2
	}

	out, err := TradeHistory(trades, testPair())
	require.NoError(t, err)

	require.Len(t, out, 3)
	for _, f := range out {
		assert.Equal(t, ColorGreen, f.TokenPriceClass)
	}
}

func TestTradeHistory_FallingPricesRedAfterFirst(t *testing.T) {
	trades := []models.RawOrder{
		buyOrder("1", 100, "1", "1.2"),
		buyOrder("2", 200, "1", "1.1"),
		buyOrder("3", 300, "1", "1"),
	}

	out, err := TradeHistory(trades, testPair())
	require.NoError(t, err)

	// 返回按时间降序：out[0] 是最后一笔成交
	require.Len(t, out, 3)
	assert.Equal(t, "3", out[0].OrderID)
	assert.Equal(t, ColorRed, out[0].TokenPriceClass)
	assert.Equal(t, ColorRed, out[1].TokenPriceClass)
	// 第一笔没有前驱，按上涨着色
	assert.Equal(t, "1", out[2].OrderID)
	assert.Equal(t, ColorGreen, out[2].TokenPriceClass)
}

func TestTradeHistory_EqualPriceIsGreen(t *testing.T) {
	trades := []models.RawOrder{
		buyOrder("1", 100, "1", "1"),
		buyOrder("2", 200, "1", "1"),
	}

	out, err := TradeHistory(trades, testPair())
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, ColorGreen, out[0].TokenPriceClass)
	assert.Equal(t, ColorGreen, out[1].TokenPriceClass)
}

func TestTradeHistory_ColoringUsesAscendingSequence(t *testing.T) {
	// 输入乱序也要先按时间升序着色，再降序返回
	trades := []models.RawOrder{
		buyOrder("2", 200, "1", "1.1"),
		buyOrder("1", 100, "1", "1.2"),
	}

	out, err := TradeHistory(trades, testPair())
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].OrderID)
	assert.Equal(t, ColorRed, out[0].TokenPriceClass)
	assert.Equal(t, ColorGreen, out[1].TokenPriceClass)
}

func TestTradeHistory_SkipsUnpriceableFills(t *testing.T) {
	// base 数量为零的成交价格是 Inf，无法编码成 JSON，视图层剔除
	trades := []models.RawOrder{
		buyOrder("1", 100, "1", "2"),
		buyOrder("2", 200, "0", "1"),
		buyOrder("3", 300, "0", "0"),
	}

	out, err := TradeHistory(trades, testPair())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].OrderID)
	assert.Equal(t, 2.0, out[0].TokenPrice)
}

func TestTradeHistory_Empty(t *testing.T) {
	out, err := TradeHistory(nil, testPair())
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = TradeHistory(nil, TokenPair{})
	assert.ErrorIs(t, err, ErrMissingPair)
}
