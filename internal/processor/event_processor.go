package processor

import (
	"fmt"
	"math"

	"github.com/panjf2000/ants/v2"

	"github.com/utrading/utrading-dex-monitor/internal/cache"
	"github.com/utrading/utrading-dex-monitor/internal/market"
	"github.com/utrading/utrading-dex-monitor/internal/models"
	"github.com/utrading/utrading-dex-monitor/internal/monitor"
	"github.com/utrading/utrading-dex-monitor/internal/nats"
	"github.com/utrading/utrading-dex-monitor/internal/state"
	"github.com/utrading/utrading-dex-monitor/pkg/logger"
)

// Publisher NATS 发布接口
type Publisher interface {
	PublishTradeSignal(signal *nats.TradeSignal) error
}

// EventProcessor 链上事件处理器
// 事件先去重，再应用到内存订单簿，最后批量落库；
// 成交事件额外通过协程池异步发布 NATS 信号
type EventProcessor struct {
	book        *state.Book
	publisher   Publisher
	batchWriter *BatchWriter
	deduper     cache.DedupCacheInterface
	markets     []market.TokenPair
	pool        *ants.Pool
}

// NewEventProcessor 创建事件处理器
func NewEventProcessor(
	book *state.Book,
	publisher Publisher,
	batchWriter *BatchWriter,
	deduper cache.DedupCacheInterface,
	markets []market.TokenPair,
) *EventProcessor {
	if batchWriter == nil {
		logger.Warn().Msg("event processor created without batch writer, writes will be skipped")
	}

	pool, err := ants.NewPool(10)
	if err != nil {
		logger.Fatal().Err(err).Msg("create ants pool failed")
	}

	return &EventProcessor{
		book:        book,
		publisher:   publisher,
		batchWriter: batchWriter,
		deduper:     deduper,
		markets:     markets,
		pool:        pool,
	}
}

// HandleMessage 处理消息（实现 MessageHandler 接口）
func (p *EventProcessor) HandleMessage(msg Message) error {
	switch m := msg.(type) {
	case OrderCreatedMessage:
		return p.handleOrderCreated(m)
	case OrderCancelledMessage:
		return p.handleOrderCancelled(m)
	case TradeMessage:
		return p.handleTrade(m)
	default:
		logger.Warn().Str("type", msg.Type()).Msg("unknown message type")
		return nil
	}
}

// handleOrderCreated 处理挂单事件
func (p *EventProcessor) handleOrderCreated(msg OrderCreatedMessage) error {
	o := msg.Order
	if o.OrderID == "" {
		return fmt.Errorf("order created event without order id, tx %s", msg.TxHash)
	}

	if p.deduper != nil && p.deduper.IsSeen("order", o.OrderID) {
		monitor.IncEventDeduped(msg.Type())
		return nil
	}

	if !p.book.ApplyOrder(o) {
		logger.Debug().
			Str("order_id", o.OrderID).
			Msg("duplicate order event skipped")
		return nil
	}

	if p.deduper != nil {
		p.deduper.Mark("order", o.OrderID)
	}

	p.persist(OrderItem{Order: &models.DexOrder{
		RawOrder:    o,
		BlockNumber: msg.BlockNumber,
		TxHash:      msg.TxHash,
	}}, o.OrderID)

	monitor.IncEventProcessed(msg.Type())
	return nil
}

// handleOrderCancelled 处理撤单事件
func (p *EventProcessor) handleOrderCancelled(msg OrderCancelledMessage) error {
	o := msg.Order
	if o.OrderID == "" {
		return fmt.Errorf("order cancelled event without order id, tx %s", msg.TxHash)
	}

	if p.deduper != nil && p.deduper.IsSeen("cancel", o.OrderID) {
		monitor.IncEventDeduped(msg.Type())
		return nil
	}

	// 已成交订单不可再撤销
	if !p.book.ApplyCancel(o) {
		logger.Debug().
			Str("order_id", o.OrderID).
			Msg("cancel event rejected, order already in terminal state")
		return nil
	}

	if p.deduper != nil {
		p.deduper.Mark("cancel", o.OrderID)
	}

	p.persist(CancellationItem{Cancellation: &models.DexCancellation{
		RawOrder:    o,
		BlockNumber: msg.BlockNumber,
		TxHash:      msg.TxHash,
	}}, o.OrderID)

	monitor.IncEventProcessed(msg.Type())
	return nil
}

// handleTrade 处理成交事件
func (p *EventProcessor) handleTrade(msg TradeMessage) error {
	o := msg.Order
	if o.OrderID == "" {
		return fmt.Errorf("trade event without order id, tx %s", msg.TxHash)
	}

	if p.deduper != nil && p.deduper.IsSeen("trade", o.OrderID) {
		monitor.IncEventDeduped(msg.Type())
		return nil
	}

	// 已撤销订单不可再成交
	if !p.book.ApplyTrade(o) {
		logger.Debug().
			Str("order_id", o.OrderID).
			Msg("trade event rejected, order already in terminal state")
		return nil
	}

	if p.deduper != nil {
		p.deduper.Mark("trade", o.OrderID)
	}

	p.persist(TradeItem{Trade: &models.DexTrade{
		RawOrder:    o,
		BlockNumber: msg.BlockNumber,
		TxHash:      msg.TxHash,
	}}, o.OrderID)

	monitor.IncEventProcessed(msg.Type())

	// 信号发布不阻塞事件管线
	p.publishSignal(o)
	return nil
}

// publishSignal 构建成交信号并提交到协程池发布
func (p *EventProcessor) publishSignal(o models.RawOrder) {
	if p.publisher == nil {
		return
	}

	signal := p.buildSignal(o)
	if signal == nil {
		return
	}

	if err := p.pool.Submit(func() {
		if err := p.publisher.PublishTradeSignal(signal); err != nil {
			logger.Error().Err(err).
				Str("order_id", signal.OrderID).
				Str("symbol", signal.Symbol).
				Msg("publish trade signal failed")
			return
		}

		logger.Info().
			Str("order_id", signal.OrderID).
			Str("symbol", signal.Symbol).
			Str("side", signal.Side).
			Float64("price", signal.Price).
			Msg("trade signal sent")
	}); err != nil {
		logger.Error().Err(err).Str("order_id", o.OrderID).Msg("submit signal task failed")
	}
}

// buildSignal 构建信号，订单不属于任何已配置交易对时返回 nil
func (p *EventProcessor) buildSignal(o models.RawOrder) *nats.TradeSignal {
	pair, ok := p.pairFor(o)
	if !ok {
		logger.Debug().
			Str("order_id", o.OrderID).
			Str("token_get", o.TokenGet).
			Str("token_give", o.TokenGive).
			Msg("trade outside configured markets, skip signal")
		return nil
	}

	d, err := market.DecorateOrder(o, pair)
	if err != nil {
		logger.Warn().Err(err).Str("order_id", o.OrderID).Msg("decorate trade for signal failed")
		return nil
	}

	// Inf/NaN 价格无法编码成 JSON
	if math.IsInf(d.TokenPrice, 0) || math.IsNaN(d.TokenPrice) {
		logger.Warn().Str("order_id", o.OrderID).Msg("trade with unpriceable amounts, skip signal")
		return nil
	}

	return &nats.TradeSignal{
		Symbol:    pair.Symbol(),
		OrderID:   o.OrderID,
		Maker:     o.Creator,
		Taker:     o.User,
		Side:      string(market.Classify(o, pair)),
		Price:     d.TokenPrice,
		Amount:    d.Token0Amount,
		Timestamp: o.Timestamp,
	}
}

// pairFor 在配置的交易对里查找订单所属市场
func (p *EventProcessor) pairFor(o models.RawOrder) (market.TokenPair, bool) {
	for _, pair := range p.markets {
		if pair.Matches(o) {
			return pair, true
		}
	}
	return market.TokenPair{}, false
}

// persist 写入批量落库队列
func (p *EventProcessor) persist(item BatchItem, orderID string) {
	if p.batchWriter == nil {
		return
	}

	if err := p.batchWriter.Add(item); err != nil {
		logger.Error().Err(err).
			Str("order_id", orderID).
			Str("table", item.TableName()).
			Msg("failed to persist event")
	}
}

// Stop 停止处理器
func (p *EventProcessor) Stop() {
	p.pool.Release()
}
