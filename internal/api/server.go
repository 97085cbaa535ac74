package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/utrading/utrading-dex-monitor/internal/cache"
	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/state"
	"github.com/utrading/utrading-dex-monitor/pkg/goplus"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// MarketsFunc 返回当前配置的交易对，支持配置热更新
type MarketsFunc func() []market.TokenPair

// Server 行情视图 HTTP 服务
// 视图按订单簿版本号缓存，同一版本的重复请求不重新计算
type Server struct {
	addr           string
	book           *state.Book
	viewCache      *cache.ViewCache
	markets        MarketsFunc
	candleInterval time.Duration

	engine *gin.Engine
	server *http.Server
}

// NewServer 创建行情服务
func NewServer(
	addr string,
	book *state.Book,
	viewCache *cache.ViewCache,
	markets MarketsFunc,
	candleInterval time.Duration,
) *Server {
	if candleInterval <= 0 {
		candleInterval = market.DefaultCandleInterval
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		addr:           addr,
		book:           book,
		viewCache:      viewCache,
		markets:        markets,
		candleInterval: candleInterval,
		engine:         engine,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	v1.GET("/orderbook", s.handleOrderBook)
	v1.GET("/trades", s.handleTrades)
	v1.GET("/candles", s.handleCandles)
	v1.GET("/orders/open", s.handleMyOpenOrders)
	v1.GET("/orders/filled", s.handleMyFilledOrders)
	v1.GET("/markets", s.handleMarkets)
}

// Start 启动 HTTP 服务
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	goplus.Go(func() {
		logger.Info().Str("addr", s.addr).Msg("api server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api server failed")
		}
	})

	return nil
}

// Stop 停止 HTTP 服务
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
