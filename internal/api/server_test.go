package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrading/utrading-dex-monitor/internal/cache"
	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/state"
)

const (
	baseAddr  = "0x1111111111111111111111111111111111111111"
	quoteAddr = "0x2222222222222222222222222222222222222222"
	accountA  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func testMarkets() []market.TokenPair {
	return []market.TokenPair{
		{
			Base:  market.Token{Symbol: "DNV", Address: baseAddr, Decimals: 18},
			Quote: market.Token{Symbol: "mETH", Address: quoteAddr, Decimals: 18},
		},
	}
}

func newTestServer() (*Server, *state.Book) {
	book := state.NewBook()
	s := NewServer("127.0.0.1:0", book, cache.NewViewCache(time.Minute), testMarkets, 0)
	return s, book
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.engine.ServeHTTP(w, req)
	return w
}

// buyOrder 付出 quote 换 base（买入 base）
func buyOrder(id string, ts int64, amountGet, amountGive string) models.RawOrder {
	return models.RawOrder{
		OrderID:    id,
		User:       accountA,
		TokenGet:   baseAddr,
		AmountGet:  amountGet,
		TokenGive:  quoteAddr,
		AmountGive: amountGive,
		Timestamp:  ts,
	}
}

func TestServer_OrderBook(t *testing.T) {
	s, book := newTestServer()
	book.ApplyOrder(buyOrder("1", 100, "1000000000000000000", "2000000000000000000"))

	w := get(s, "/api/v1/orderbook?base=DNV&quote=mETH")
	require.Equal(t, http.StatusOK, w.Code)

	var ob market.OrderBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ob))
	require.Len(t, ob.BuyOrders, 1)
	assert.Equal(t, 2.0, ob.BuyOrders[0].TokenPrice)
	assert.Empty(t, ob.SellOrders)
}

func TestServer_OrderBookExcludesClosed(t *testing.T) {
	s, book := newTestServer()
	open := buyOrder("1", 100, "1000000000000000000", "2000000000000000000")
	cancelled := buyOrder("2", 200, "1000000000000000000", "3000000000000000000")

	book.ApplyOrder(open)
	book.ApplyOrder(cancelled)
	book.ApplyCancel(cancelled)

	w := get(s, "/api/v1/orderbook?base=DNV&quote=mETH")
	require.Equal(t, http.StatusOK, w.Code)

	var ob market.OrderBook
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ob))
	require.Len(t, ob.BuyOrders, 1)
	assert.Equal(t, "1", ob.BuyOrders[0].OrderID)
}

func TestServer_ParamValidation(t *testing.T) {
	s, _ := newTestServer()

	assert.Equal(t, http.StatusBadRequest, get(s, "/api/v1/orderbook").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/v1/orderbook?base=FOO&quote=BAR").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/v1/orders/open?base=DNV&quote=mETH").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/v1/candles?base=DNV&quote=mETH&interval=-5").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/api/v1/candles?base=DNV&quote=mETH&interval=abc").Code)
}

func TestServer_Trades(t *testing.T) {
	s, book := newTestServer()

	o1 := buyOrder("1", 100, "1000000000000000000", "1000000000000000000")
	o2 := buyOrder("2", 200, "1000000000000000000", "2000000000000000000")
	book.ApplyTrade(o1)
	book.ApplyTrade(o2)

	w := get(s, "/api/v1/trades?base=DNV&quote=mETH")
	require.Equal(t, http.StatusOK, w.Code)

	var trades []market.FilledOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	require.Len(t, trades, 2)
	// 最近成交在前
	assert.Equal(t, "2", trades[0].OrderID)
	assert.Equal(t, market.ColorGreen, trades[0].TokenPriceClass)
}

func TestServer_TradesWithZeroAmountFill(t *testing.T) {
	s, book := newTestServer()

	// base 数量为零的成交价格是 Inf 哨兵值，视图必须剔除它而不是让 JSON 编码失败
	book.ApplyTrade(buyOrder("1", 100, "1000000000000000000", "2000000000000000000"))
	book.ApplyTrade(buyOrder("2", 200, "0", "1000000000000000000"))

	w := get(s, "/api/v1/trades?base=DNV&quote=mETH")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Body.Bytes())

	var trades []market.FilledOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	require.Len(t, trades, 1)
	assert.Equal(t, "1", trades[0].OrderID)
}

func TestServer_Candles(t *testing.T) {
	s, book := newTestServer()
	book.ApplyTrade(buyOrder("1", 1700000000, "1000000000000000000", "1500000000000000000"))

	w := get(s, "/api/v1/candles?base=DNV&quote=mETH&interval=3600")
	require.Equal(t, http.StatusOK, w.Code)

	var chart market.PriceChart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
	assert.Equal(t, 1.5, chart.LastPrice)
	assert.Equal(t, "+", chart.LastPriceChange)
	require.Len(t, chart.Series, 1)
	require.Len(t, chart.Series[0].Data, 1)
}

func TestServer_MyOrders(t *testing.T) {
	s, book := newTestServer()

	mine := buyOrder("1", 100, "1000000000000000000", "2000000000000000000")
	theirs := buyOrder("2", 200, "1000000000000000000", "2000000000000000000")
	theirs.User = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

	book.ApplyOrder(mine)
	book.ApplyOrder(theirs)

	w := get(s, "/api/v1/orders/open?base=DNV&quote=mETH&account="+accountA)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []market.OpenOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0].OrderID)
}

func TestServer_MyFilledOrdersInversion(t *testing.T) {
	s, book := newTestServer()

	// 账户是吃单方，挂单方向买入，账户视角是卖出
	trade := buyOrder("1", 100, "1000000000000000000", "2000000000000000000")
	trade.Creator = "0xcccccccccccccccccccccccccccccccccccccccc"
	book.ApplyTrade(trade)

	w := get(s, "/api/v1/orders/filled?base=DNV&quote=mETH&account="+accountA)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []market.MyFilledOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, market.OrderTypeSell, orders[0].OrderType)
	assert.Equal(t, "-", orders[0].OrderSign)
}

func TestServer_ViewCacheHit(t *testing.T) {
	s, book := newTestServer()
	book.ApplyOrder(buyOrder("1", 100, "1000000000000000000", "2000000000000000000"))

	first := get(s, "/api/v1/orderbook?base=DNV&quote=mETH")
	second := get(s, "/api/v1/orderbook?base=DNV&quote=mETH")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	// 同一版本命中缓存，响应一致
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// 订单簿变化后视图跟着变化
	book.ApplyOrder(buyOrder("2", 200, "1000000000000000000", "5000000000000000000"))
	third := get(s, "/api/v1/orderbook?base=DNV&quote=mETH")

	var ob market.OrderBook
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &ob))
	assert.Len(t, ob.BuyOrders, 2)
}

func TestServer_Markets(t *testing.T) {
	s, _ := newTestServer()

	w := get(s, "/api/v1/markets")
	require.Equal(t, http.StatusOK, w.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "DNV/mETH", out[0]["symbol"])
}
