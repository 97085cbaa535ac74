package nats

import (
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// Publisher NATS 发布器
type Publisher struct {
	*nats.Conn
	mu     sync.RWMutex
	closed bool
}

// NewPublisher 创建 NATS 发布器
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	p := &Publisher{
		Conn: conn,
	}

	// 更新指标
	monitor.GetMetrics().SetNATSConnected(true)

	return p, nil
}

// PublishTradeSignal 发布成交信号
func (p *Publisher) PublishTradeSignal(signal *TradeSignal) error {
	data, err := signal.Marshal()
	if err != nil {
		monitor.GetMetrics().IncSignalErrors("marshal")
		return err
	}

	if err = p.Publish(TopicDexTradeSignal, data); err != nil {
		monitor.GetMetrics().IncSignalErrors("publish")
		logger.Error().Err(err).Str("symbol", signal.Symbol).Msg("publish trade signal failed")
		return err
	}

	monitor.GetMetrics().IncSignalsPublished(signal.Symbol)
	return nil
}

// IsConnected 检查发布器是否已连接
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed && p.Conn != nil && !p.Conn.IsClosed()
}

// Close 关闭连接
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	// 更新指标
	monitor.GetMetrics().SetNATSConnected(false)

	if p.Conn != nil {
		p.Conn.Close()
	}
	return nil
}
