package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/monitor"
)

// pairFromQuery 根据 base/quote 代币符号定位配置的交易对
func (s *Server) pairFromQuery(c *gin.Context) (market.TokenPair, bool) {
	base := c.Query("base")
	quote := c.Query("quote")
	if base == "" || quote == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base and quote are required"})
		return market.TokenPair{}, false
	}

	for _, pair := range s.markets() {
		if strings.EqualFold(pair.Base.Symbol, base) && strings.EqualFold(pair.Quote.Symbol, quote) {
			return pair, true
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "unknown market " + base + "/" + quote})
	return market.TokenPair{}, false
}

// openSet 当前版本的开放订单集合（全量减撤单减成交）
func (s *Server) openSet(revision uint64) []models.RawOrder {
	key := s.viewCache.Key("open_set", revision)
	if v, ok := s.viewCache.Get(key); ok {
		return v.([]models.RawOrder)
	}

	snap := s.book.Snapshot()
	open := market.OpenOrders(snap.AllOrders, snap.CancelledOrders, snap.FilledOrders)
	s.viewCache.Set(key, open)
	return open
}

func (s *Server) handleOrderBook(c *gin.Context) {
	pair, ok := s.pairFromQuery(c)
	if !ok {
		return
	}

	revision := s.book.Revision()
	key := s.viewCache.Key("order_book", revision, pair.Symbol())
	if v, ok := s.viewCache.Get(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	start := time.Now()
	book, err := market.BuildOrderBook(s.openSet(revision), pair)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitor.ObserveViewBuild("order_book", time.Since(start).Seconds())

	s.viewCache.Set(key, book)
	c.JSON(http.StatusOK, book)
}

func (s *Server) handleTrades(c *gin.Context) {
	pair, ok := s.pairFromQuery(c)
	if !ok {
		return
	}

	revision := s.book.Revision()
	key := s.viewCache.Key("trade_history", revision, pair.Symbol())
	if v, ok := s.viewCache.Get(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	start := time.Now()
	trades, err := market.TradeHistory(s.book.Snapshot().FilledOrders, pair)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitor.ObserveViewBuild("trade_history", time.Since(start).Seconds())

	s.viewCache.Set(key, trades)
	c.JSON(http.StatusOK, trades)
}

func (s *Server) handleCandles(c *gin.Context) {
	pair, ok := s.pairFromQuery(c)
	if !ok {
		return
	}

	// interval 单位秒，缺省用配置的蜡烛周期
	interval := s.candleInterval
	if raw := c.Query("interval"); raw != "" {
		secs := cast.ToInt64(raw)
		if secs <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be a positive number of seconds"})
			return
		}
		interval = time.Duration(secs) * time.Second
	}

	revision := s.book.Revision()
	key := s.viewCache.Key("price_chart", revision, pair.Symbol(), interval.String())
	if v, ok := s.viewCache.Get(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	start := time.Now()
	chart, err := market.BuildPriceChart(s.book.Snapshot().FilledOrders, pair, interval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitor.ObserveViewBuild("price_chart", time.Since(start).Seconds())

	s.viewCache.Set(key, chart)
	c.JSON(http.StatusOK, chart)
}

func (s *Server) handleMyOpenOrders(c *gin.Context) {
	pair, ok := s.pairFromQuery(c)
	if !ok {
		return
	}

	account := c.Query("account")
	if account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	revision := s.book.Revision()
	key := s.viewCache.Key("my_open_orders", revision, pair.Symbol(), strings.ToLower(account))
	if v, ok := s.viewCache.Get(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	start := time.Now()
	orders, err := market.MyOpenOrders(account, s.openSet(revision), pair)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitor.ObserveViewBuild("my_open_orders", time.Since(start).Seconds())

	s.viewCache.Set(key, orders)
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleMyFilledOrders(c *gin.Context) {
	pair, ok := s.pairFromQuery(c)
	if !ok {
		return
	}

	account := c.Query("account")
	if account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account is required"})
		return
	}

	revision := s.book.Revision()
	key := s.viewCache.Key("my_filled_orders", revision, pair.Symbol(), strings.ToLower(account))
	if v, ok := s.viewCache.Get(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	start := time.Now()
	orders, err := market.MyFilledOrders(account, s.book.Snapshot().FilledOrders, pair)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	monitor.ObserveViewBuild("my_filled_orders", time.Since(start).Seconds())

	s.viewCache.Set(key, orders)
	c.JSON(http.StatusOK, orders)
}

// handleMarkets 列出配置的交易对
func (s *Server) handleMarkets(c *gin.Context) {
	pairs := s.markets()
	out := make([]gin.H, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, gin.H{
			"symbol": pair.Symbol(),
			"base":   pair.Base,
			"quote":  pair.Quote,
		})
	}
	c.JSON(http.StatusOK, out)
}
