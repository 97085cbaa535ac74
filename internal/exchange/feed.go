package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/valyala/fastjson"

	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/internal/processor"
	"github.com/utrading/utrading-dex-monitor/pkg/goplus"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

const (
	writeWait      = 10 * time.Second // 写入超时
	pongWait       = 60 * time.Second // 读取超时（应大于心跳间隔）
	pingPeriod     = 50 * time.Second // 心跳间隔
	maxMessageSize = 1024 * 1024 * 2  // 最大消息限制 2MB
)

// Enqueuer 事件消息入队接口
type Enqueuer interface {
	Enqueue(msg processor.Message) error
}

// Feed 以太坊节点日志订阅源
// 通过 eth_subscribe 订阅交易所合约日志，断线自动重连并重新订阅
type Feed struct {
	url          string
	exchangeAddr common.Address
	queue        Enqueuer

	conn     *websocket.Conn
	connDone chan struct{} // 随当前连接关闭，终止它的心跳协程
	mu       sync.RWMutex
	writeMu  sync.Mutex

	reconnectDelay   time.Duration
	maxReconnectWait time.Duration
	reconnecting     atomic.Bool

	reqID      atomic.Int64
	subID      atomic.Value // string
	parserPool fastjson.ParserPool

	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed 创建日志订阅源
func NewFeed(url, exchangeAddr string, queue Enqueuer, reconnectDelay, maxReconnectWait time.Duration) *Feed {
	if url == "" {
		panic("exchange: node URL cannot be empty")
	}
	if reconnectDelay <= 0 {
		reconnectDelay = time.Second
	}
	if maxReconnectWait <= 0 {
		maxReconnectWait = time.Minute
	}

	return &Feed{
		url:              url,
		exchangeAddr:     common.HexToAddress(exchangeAddr),
		queue:            queue,
		reconnectDelay:   reconnectDelay,
		maxReconnectWait: maxReconnectWait,
		done:             make(chan struct{}),
	}
}

// Start 启动订阅循环
func (f *Feed) Start(ctx context.Context) {
	goplus.Go(func() {
		f.run(ctx)
	})
}

// run 连接、订阅、读取，断开后按指数退避重连
func (f *Feed) run(ctx context.Context) {
	delay := f.reconnectDelay

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		default:
		}

		if err := f.connect(ctx); err != nil {
			f.reconnecting.Store(true)
			logger.Error().Err(err).
				Dur("retry_in", delay).
				Msg("connect eth node failed")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}

			delay *= 2
			if delay > f.maxReconnectWait {
				delay = f.maxReconnectWait
			}
			continue
		}

		delay = f.reconnectDelay
		f.reconnecting.Store(false)

		if err := f.subscribeLogs(); err != nil {
			logger.Error().Err(err).Msg("subscribe exchange logs failed")
			f.internalClose()
			continue
		}

		// readPump 返回即连接已断开
		f.readPump(ctx)
		f.reconnecting.Store(true)
		monitor.GetMetrics().SetWebSocketConnected(false)
	}
}

func (f *Feed) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial error: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	connDone := make(chan struct{})

	f.mu.Lock()
	f.conn = conn
	f.connDone = connDone
	f.mu.Unlock()

	monitor.GetMetrics().SetWebSocketConnected(true)
	logger.Info().Str("url", f.url).Msg("eth node connected")

	goplus.Go(func() {
		f.pingPump(conn, connDone)
	})

	return nil
}

// subscribeLogs 按合约地址过滤订阅日志
func (f *Feed) subscribeLogs() error {
	id := f.reqID.Add(1)
	return f.writeJSONWithDeadline(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "eth_subscribe",
		"params": []any{
			"logs",
			map[string]any{"address": f.exchangeAddr.Hex()},
		},
	})
}

func (f *Feed) readPump(ctx context.Context) {
	defer f.internalClose()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()

		if conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error().Err(err).Msg("ws read error")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(pongWait))
		f.handleMessage(msg)
	}
}

// handleMessage 区分控制帧和日志通知
// 控制帧（订阅确认、错误）走 gjson 按需取字段，通知走 fastjson 解析
func (f *Feed) handleMessage(msg []byte) {
	method := gjson.GetBytes(msg, "method").Str
	if method != "eth_subscription" {
		if errMsg := gjson.GetBytes(msg, "error"); errMsg.Exists() {
			logger.Error().Str("error", errMsg.Raw).Msg("eth node rpc error")
			return
		}
		if result := gjson.GetBytes(msg, "result"); result.Exists() {
			f.subID.Store(result.String())
			logger.Info().Str("subscription", result.String()).Msg("exchange logs subscribed")
		}
		return
	}

	parser := f.parserPool.Get()
	defer f.parserPool.Put(parser)

	v, err := parser.ParseBytes(msg)
	if err != nil {
		logger.Warn().Err(err).Msg("parse subscription notification failed")
		return
	}

	result := v.Get("params", "result")
	if result == nil {
		logger.Warn().Msg("subscription notification without result")
		return
	}

	lg, err := parseLog(result)
	if err != nil {
		logger.Warn().Err(err).Msg("parse event log failed")
		return
	}

	// 链重组回滚的日志直接丢弃
	if lg.Removed {
		logger.Warn().
			Str("tx_hash", lg.TxHash).
			Uint64("block", lg.BlockNumber).
			Msg("skip removed log from chain reorg")
		return
	}

	if lg.Address != f.exchangeAddr {
		return
	}

	event, err := DecodeEvent(lg)
	if err != nil {
		logger.Warn().Err(err).
			Str("tx_hash", lg.TxHash).
			Msg("decode exchange event failed")
		return
	}
	if event == nil {
		// 未知事件主题
		return
	}

	if err = f.queue.Enqueue(event); err != nil {
		logger.Error().Err(err).Str("type", event.Type()).Msg("enqueue event failed")
	}
}

// pingPump 只服务建立它的那条连接，连接关闭即退出
func (f *Feed) pingPump(conn *websocket.Conn, connDone chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-connDone:
			return
		case <-ticker.C:
			if err := f.ping(conn); err != nil {
				return
			}
		}
	}
}

func (f *Feed) ping(conn *websocket.Conn) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}

func (f *Feed) writeJSONWithDeadline(v any) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("connection closed")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// internalClose 关闭底层连接，不触发停机逻辑
func (f *Feed) internalClose() {
	f.mu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	if f.connDone != nil {
		close(f.connDone)
		f.connDone = nil
	}
	f.mu.Unlock()
}

// Close 停止订阅源
func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
		f.internalClose()
		monitor.GetMetrics().SetWebSocketConnected(false)
	})
	return nil
}

// IsConnected 连接是否存活
func (f *Feed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.conn != nil
}

// IsReconnecting 是否处于重连退避中
func (f *Feed) IsReconnecting() bool {
	return f.reconnecting.Load()
}
