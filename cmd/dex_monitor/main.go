package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/utrading/utrading-dex-monitor/config"
	"github.com/utrading/utrading-dex-monitor/internal/api"
	"github.com/utrading/utrading-dex-monitor/internal/cache"
	"github.com/utrading/utrading-dex-monitor/internal/cleaner"
	"github.com/utrading/utrading-dex-monitor/internal/dal"
	"github.com/utrading/utrading-dex-monitor/internal/dao"
	"github.com/utrading/utrading-dex-monitor/internal/exchange"
	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/internal/nats"
	"github.com/utrading/utrading-dex-monitor/internal/processor"
	"github.com/utrading/utrading-dex-monitor/internal/state"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
	"github.com/utrading/utrading-dex-monitor/pkg/sigproc"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "cfg.toml", "config file path")
	flag.Parse()

	// 本地开发用 .env 覆盖环境变量，文件不存在时忽略
	_ = godotenv.Load()
	if path := os.Getenv("DEX_MONITOR_CONFIG"); path != "" {
		configFile = path
	}

	// 加载配置
	if err := config.Init(configFile); err != nil {
		panic(err)
	}
	cfg := config.Get()

	// 初始化日志
	if err := initLogger(cfg); err != nil {
		panic("init logger failed: " + err.Error())
	}
	defer logger.Close()

	logger.Info().Msg("dex_monitor service starting...")

	// 初始化指标
	monitor.InitMetrics()

	// 初始化数据库
	dal.InitMysqlDB(cfg.MySQL)

	// 自动迁移表结构
	dal.AutoMigrate()

	// 初始化 DAO
	dao.InitDAO(dal.MySQL())

	// 创建数据清理器
	dataCleaner := cleaner.NewCleaner(dal.MySQL(), cfg.Views.Retention)
	dataCleaner.Start()

	// 初始化 NATS
	publisher, err := nats.NewPublisher(cfg.NATS.Endpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("init nats publisher failed")
	}
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 内存订单簿，从数据库回放历史事件
	book := state.NewBook()
	if err = dao.LoadBook(book); err != nil {
		logger.Fatal().Err(err).Msg("load book from db failed")
	}

	// 视图缓存和事件去重缓存
	viewCache := cache.NewViewCache(cfg.Views.CacheTTL)
	deduper := cache.NewDedupCache(24 * time.Hour)

	// 创建批量写入器
	batchWriter := processor.NewBatchWriter(&processor.BatchWriterConfig{
		BatchSize:     cfg.Views.BatchSize,
		FlushInterval: cfg.Views.FlushInterval,
	})
	batchWriter.Start()

	// 事件处理器和消息队列
	eventProcessor := processor.NewEventProcessor(book, publisher, batchWriter, deduper, cfg.Markets)
	queue := processor.NewMessageQueue(cfg.DexMonitor.MessageQueueSize, eventProcessor)
	queue.Start()

	// 订阅交易所合约事件
	feed := exchange.NewFeed(
		cfg.DexMonitor.EthWSURL,
		cfg.DexMonitor.ExchangeAddress,
		queue,
		cfg.DexMonitor.ReconnectDelay,
		cfg.DexMonitor.MaxReconnectWait,
	)
	feed.Start(ctx)

	// 行情 API 服务器
	apiServer := api.NewServer(
		cfg.DexMonitor.APIServerAddr,
		book,
		viewCache,
		func() []market.TokenPair { return config.Get().Markets },
		cfg.Views.CandleInterval,
	)
	if err = apiServer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("start api server failed")
	}

	// 初始化健康检查服务器
	healthServer := monitor.NewHealthServer(
		cfg.DexMonitor.HealthServerAddr,
		book,
		feed,
		publisher,
	)
	if err = healthServer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("start health server failed")
	}
	defer healthServer.Stop(context.Background())

	logger.Info().
		Str("eth_ws_url", cfg.DexMonitor.EthWSURL).
		Str("exchange", cfg.DexMonitor.ExchangeAddress).
		Str("api_addr", cfg.DexMonitor.APIServerAddr).
		Str("health_addr", cfg.DexMonitor.HealthServerAddr).
		Int("markets", len(cfg.Markets)).
		Msg("dex_monitor service started successfully")

	// 优雅关闭
	sigproc.GracefulShutdown(func(sig os.Signal) {
		logger.Info().Str("signal", sig.String()).Msg("shutting down...")

		// 停止数据清理器
		dataCleaner.Stop()

		// 停止接收新事件
		cancel()
		feed.Close()

		// 排空消息队列
		queue.Stop()

		// 停止事件处理器（等待信号发布完成）
		eventProcessor.Stop()

		// 关闭 API 和健康检查服务器
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		apiServer.Stop(shutdownCtx)
		healthServer.Stop(shutdownCtx)

		// 关闭配置重载
		config.Stop()

		// 关闭批量写入器
		batchWriter.Stop()

		// 关闭数据库
		dal.CloseMySQL()

		logger.Info().Msg("dex_monitor service stopped")
	})

	<-ctx.Done()
}

func initLogger(cfg *config.Config) error {
	return logger.NewBuilder().
		SetMaxSize(cfg.Logger.MaxSize).
		SetMaxBackups(cfg.Logger.MaxBackups).
		SetMaxAge(cfg.Logger.MaxAge).
		SetLevel(cfg.Logger.Level).
		EnableCompression(cfg.Logger.Compress).
		EnableConsoleOutput(cfg.Logger.Console).
		Build()
}
