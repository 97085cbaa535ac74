package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-dex-monitor/internal/models"
)

func TestBuildOrderBook_SplitAndSort(t *testing.T) {
	orders := []models.RawOrder{
		buyOrder("1", 100, "1", "2"),   // buy @ 2
		buyOrder("2", 200, "1", "5"),   // buy @ 5
		sellOrder("3", 300, "1", "3"),  // sell @ 3
		sellOrder("4", 400, "2", "14"), // sell @ 7
	}

	book, err := BuildOrderBook(orders, testPair())
	require.NoError(t, err)

	require.Len(t, book.BuyOrders, 2)
	require.Len(t, book.SellOrders, 2)

	// 两侧都按价格从高到低
	assert.Equal(t, 5.0, book.BuyOrders[0].TokenPrice)
	assert.Equal(t, 2.0, book.BuyOrders[1].TokenPrice)
	assert.Equal(t, 7.0, book.SellOrders[0].TokenPrice)
	assert.Equal(t, 3.0, book.SellOrders[1].TokenPrice)

	for _, o := range book.BuyOrders {
		assert.Equal(t, OrderTypeBuy, o.OrderType)
		assert.Equal(t, ColorGreen, o.OrderTypeClass)
		assert.Equal(t, OrderTypeSell, o.OrderFillAction)
	}
	for _, o := range book.SellOrders {
		assert.Equal(t, OrderTypeSell, o.OrderType)
		assert.Equal(t, ColorRed, o.OrderTypeClass)
		assert.Equal(t, OrderTypeBuy, o.OrderFillAction)
	}
}

func TestBuildOrderBook_FiltersForeignTokens(t *testing.T) {
	foreign := buyOrder("9", 100, "1", "1")
	foreign.TokenGet = otherAddr

	orders := []models.RawOrder{
		buyOrder("1", 100, "1", "2"),
		foreign,
	}

	book, err := BuildOrderBook(orders, testPair())
	require.NoError(t, err)
	assert.Len(t, book.BuyOrders, 1)
	assert.Empty(t, book.SellOrders)
}

func TestBuildOrderBook_MissingPair(t *testing.T) {
	_, err := BuildOrderBook([]models.RawOrder{buyOrder("1", 100, "1", "1")}, TokenPair{})
	assert.ErrorIs(t, err, ErrMissingPair)
}

func TestBuildOrderBook_Empty(t *testing.T) {
	book, err := BuildOrderBook(nil, testPair())
	require.NoError(t, err)
	assert.Empty(t, book.BuyOrders)
	assert.Empty(t, book.SellOrders)
}
