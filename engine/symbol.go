// Package engine realizes the Symbol Engine: a per-symbol serial worker
// that owns one orderbook.Book and one trigger.Table, and a process-wide
// Registry mapping symbol name to worker.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"github.com/lightningcore/matchcore/domain"
	"github.com/lightningcore/matchcore/emitter"
	"github.com/lightningcore/matchcore/fees"
	"github.com/lightningcore/matchcore/metrics"
	"github.com/lightningcore/matchcore/orderbook"
	"github.com/lightningcore/matchcore/persistence"
	"github.com/lightningcore/matchcore/trigger"
)

// Symbol is one trading pair's serial execution point. All mutation of its
// Book and Trigger Table happens inside run, the single goroutine
// t.Go starts — satisfying spec.md §5's per-symbol serial execution
// requirement via a command queue, grounded on the teacher's single
// matching goroutine per MatchingEngine.
type Symbol struct {
	name     string
	book     *orderbook.Book
	triggers *trigger.Table
	fees     *fees.Engine
	writer   persistence.Writer
	metrics  *metrics.Collector
	hub      *emitter.Hub

	cmds chan *command
	t    tomb.Tomb
}

// Option configures a Symbol at construction.
type Option func(*Symbol)

// WithWriter injects a persistence.Writer. Defaults to persistence.NoopWriter.
func WithWriter(w persistence.Writer) Option {
	return func(s *Symbol) { s.writer = w }
}

// WithMetrics injects a metrics.Collector. A nil Collector is safe.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Symbol) { s.metrics = c }
}

// WithHub injects an emitter.Hub for trade/BBO publication.
func WithHub(h *emitter.Hub) Option {
	return func(s *Symbol) { s.hub = h }
}

// WithCommandQueueSize overrides the default command channel capacity.
func WithCommandQueueSize(n int) Option {
	return func(s *Symbol) { s.cmds = make(chan *command, n) }
}

// NewSymbol creates and starts a Symbol worker for name, sharing feeEngine
// with every other symbol in the process (spec.md §5: the fee schedule is
// process-wide, observed atomically via fees.Engine's own mutex).
func NewSymbol(name string, feeEngine *fees.Engine, opts ...Option) *Symbol {
	s := &Symbol{
		name:     name,
		book:     orderbook.NewBook(name),
		triggers: trigger.New(),
		fees:     feeEngine,
		writer:   persistence.NoopWriter{},
		cmds:     make(chan *command, 1024),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.t.Go(s.run)
	return s
}

// Close stops the worker and waits for it to exit.
func (s *Symbol) Close() error {
	s.t.Kill(nil)
	return s.t.Wait()
}

func (s *Symbol) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("symbol", s.name).Msg("symbol engine halted")
			err = domain.ErrEngineHalted
		}
	}()
	for {
		select {
		case <-s.t.Dying():
			return nil
		case cmd := <-s.cmds:
			s.handle(cmd)
		}
	}
}

// send enqueues cmd and blocks for its reply, returning ErrEngineHalted if
// the worker has already died (e.g. after an unexpected fault panicked the
// serial loop, per spec.md §7's "the engine must halt rather than continue
// from undefined state").
func (s *Symbol) send(cmd *command) commandResult {
	select {
	case s.cmds <- cmd:
	case <-s.t.Dying():
		return commandResult{err: domain.ErrEngineHalted}
	}
	select {
	case res := <-cmd.reply:
		return res
	case <-s.t.Dying():
		return commandResult{err: domain.ErrEngineHalted}
	}
}

func (s *Symbol) handle(cmd *command) {
	switch cmd.kind {
	case cmdSubmit:
		order, trades, err := s.handleSubmit(cmd.draft)
		cmd.reply <- commandResult{order: order, trades: trades, err: err}
	case cmdCancel:
		order, err := s.handleCancel(cmd.orderID)
		cmd.reply <- commandResult{order: order, err: err}
	case cmdLookup:
		order, err := s.handleLookup(cmd.orderID)
		cmd.reply <- commandResult{order: order, err: err}
	case cmdBBO:
		cmd.reply <- commandResult{bbo: s.book.BBO()}
	case cmdSnapshot:
		cmd.reply <- commandResult{snapshot: s.book.Snapshot(cmd.depth)}
	case cmdRecentTrades:
		cmd.reply <- commandResult{recentTrades: s.book.RecentTrades(cmd.limit)}
	case cmdSetFeeSchedule:
		sched, err := s.fees.SetSchedule(s.name, cmd.makerRate, cmd.takerRate)
		if err == nil {
			_ = s.writer.SaveFeeSchedule(sched)
		}
		cmd.reply <- commandResult{schedule: sched, err: err}
	case cmdGetFeeSchedule:
		cmd.reply <- commandResult{schedule: s.fees.Quote(s.name)}
	case cmdSetDefaultRates:
		err := s.fees.SetDefaultRates(cmd.makerRate, cmd.takerRate)
		cmd.reply <- commandResult{err: err}
	}
}

func (s *Symbol) handleSubmit(draft domain.OrderDraft) (*domain.Order, []*domain.Trade, error) {
	if s.metrics != nil {
		s.metrics.OrderSubmitted(draft.Symbol, draft.Variant.String())
	}
	if err := domain.ValidateDraft(draft); err != nil {
		rejected := buildOrder(draft)
		rejected.Status = domain.Rejected
		return rejected, nil, err
	}

	order := buildOrder(draft)

	if order.Variant.IsConditional() {
		order.Status = domain.PendingTrigger
		s.triggers.Insert(order)
		s.persistOrder(order)
		return order, nil, nil
	}

	trades, err := s.book.Submit(order)
	s.persistOrder(order)
	direct := s.settleTrades(trades)
	cascade := s.drainTriggers(direct)
	s.emit(append(append([]*domain.Trade{}, direct...), cascade...))
	return order, direct, err
}

// drainTriggers implements the spec's "stop-order storm" note: an iterative
// drain, not recursion, bounded by the trigger table's at-most-once
// promotion invariant. Each promotion re-enters the regular Book path and
// may itself produce trades whose last price feeds the next Evaluate call.
func (s *Symbol) drainTriggers(seedTrades []*domain.Trade) []*domain.Trade {
	if len(seedTrades) == 0 {
		return nil
	}
	var produced []*domain.Trade
	lastPrice := seedTrades[len(seedTrades)-1].Price
	promoted := s.triggers.Evaluate(lastPrice)
	for len(promoted) > 0 {
		var roundTrades []*domain.Trade
		for _, p := range promoted {
			if s.metrics != nil {
				s.metrics.TriggerPromoted(s.name, p.Variant.String())
			}
			pts, _ := s.book.Submit(p)
			s.persistOrder(p)
			settled := s.settleTrades(pts)
			roundTrades = append(roundTrades, settled...)
		}
		produced = append(produced, roundTrades...)
		if len(roundTrades) == 0 {
			break
		}
		lastPrice = roundTrades[len(roundTrades)-1].Price
		promoted = s.triggers.Evaluate(lastPrice)
	}
	return produced
}

func (s *Symbol) settleTrades(trades []*domain.Trade) []*domain.Trade {
	for _, t := range trades {
		s.fees.Apply(t)
		s.persistTrade(t)
	}
	if s.metrics != nil {
		s.metrics.TradesExecuted(s.name, len(trades))
	}
	return trades
}

func (s *Symbol) emit(trades []*domain.Trade) {
	if s.hub == nil {
		return
	}
	s.hub.PublishTrades(trades)
	if len(trades) > 0 {
		s.hub.PublishBBO(s.book.BBO())
	}
	if s.metrics != nil {
		bbo := s.book.BBO()
		var bid, ask float64
		hasBid, hasAsk := bbo.Bid != nil, bbo.Ask != nil
		if hasBid {
			bid, _ = bbo.Bid.Price.Float64()
		}
		if hasAsk {
			ask, _ = bbo.Ask.Price.Float64()
		}
		s.metrics.SetBBO(s.name, bid, ask, hasBid, hasAsk)
		bidCount, askCount := s.book.RestingCounts()
		s.metrics.SetRestingOrders(s.name, domain.SideBuy.String(), bidCount)
		s.metrics.SetRestingOrders(s.name, domain.SideSell.String(), askCount)
	}
}

func (s *Symbol) handleCancel(orderID string) (*domain.Order, error) {
	if order, err := s.book.Cancel(orderID); err == nil {
		s.persistOrder(order)
		if s.hub != nil {
			s.hub.PublishBBO(s.book.BBO())
		}
		return order, nil
	}
	order, err := s.triggers.Cancel(orderID)
	if err != nil {
		return nil, err
	}
	s.persistOrder(order)
	return order, nil
}

func (s *Symbol) handleLookup(orderID string) (*domain.Order, error) {
	if order, err := s.book.Lookup(orderID); err == nil {
		return order, nil
	}
	return s.triggers.Lookup(orderID)
}

func (s *Symbol) persistOrder(o *domain.Order) {
	if err := s.writer.SaveOrder(o); err != nil {
		log.Error().Err(err).Str("symbol", s.name).Str("order_id", o.ID).Msg("save order failed")
	}
}

func (s *Symbol) persistTrade(t *domain.Trade) {
	if err := s.writer.SaveTrade(t); err != nil {
		log.Error().Err(err).Str("symbol", s.name).Str("trade_id", t.ID).Msg("save trade failed")
	}
}

func buildOrder(d domain.OrderDraft) *domain.Order {
	o := &domain.Order{
		ID:        uuid.NewString(),
		Symbol:    d.Symbol,
		Side:      d.Side,
		Variant:   d.Variant,
		Quantity:  d.Quantity,
		UserID:    d.UserID,
		CreatedAt: time.Now(),
		Status:    domain.Open,
	}
	if d.Price != nil {
		o.Price = *d.Price
	}
	if d.StopPrice != nil {
		o.StopPrice = *d.StopPrice
	}
	if d.PostTriggerLimitPrice != nil {
		o.PostTriggerLimitPrice = *d.PostTriggerLimitPrice
	}
	return o
}

// --- synchronous public API, each a command round-trip through run() ---

// Submit admits a new order draft and returns its resulting trades and
// final (or resting) state.
func (s *Symbol) Submit(ctx context.Context, draft domain.OrderDraft) (*domain.Order, []*domain.Trade, error) {
	cmd := newCommand(cmdSubmit)
	cmd.draft = draft
	res := s.sendCtx(ctx, cmd)
	return res.order, res.trades, res.err
}

// Cancel cancels a resting or pending-trigger order by id.
func (s *Symbol) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	cmd := newCommand(cmdCancel)
	cmd.orderID = orderID
	res := s.sendCtx(ctx, cmd)
	return res.order, res.err
}

// Lookup returns an order's current state by id.
func (s *Symbol) Lookup(ctx context.Context, orderID string) (*domain.Order, error) {
	cmd := newCommand(cmdLookup)
	cmd.orderID = orderID
	res := s.sendCtx(ctx, cmd)
	return res.order, res.err
}

// BBO returns the current best bid/offer.
func (s *Symbol) BBO(ctx context.Context) domain.BBO {
	res := s.sendCtx(ctx, newCommand(cmdBBO))
	return res.bbo
}

// Snapshot returns an L2 snapshot to the given depth.
func (s *Symbol) Snapshot(ctx context.Context, depth int) domain.L2Snapshot {
	cmd := newCommand(cmdSnapshot)
	cmd.depth = depth
	res := s.sendCtx(ctx, cmd)
	return res.snapshot
}

// RecentTrades returns up to limit of the most recent trades, newest first.
func (s *Symbol) RecentTrades(ctx context.Context, limit int) []*domain.Trade {
	cmd := newCommand(cmdRecentTrades)
	cmd.limit = limit
	res := s.sendCtx(ctx, cmd)
	return res.recentTrades
}

// SetFeeSchedule installs a per-symbol maker/taker rate pair.
func (s *Symbol) SetFeeSchedule(ctx context.Context, maker, taker decimal.Decimal) (domain.FeeSchedule, error) {
	cmd := newCommand(cmdSetFeeSchedule)
	cmd.makerRate, cmd.takerRate = maker, taker
	res := s.sendCtx(ctx, cmd)
	return res.schedule, res.err
}

// GetFeeSchedule returns the effective fee schedule for this symbol.
func (s *Symbol) GetFeeSchedule(ctx context.Context) domain.FeeSchedule {
	res := s.sendCtx(ctx, newCommand(cmdGetFeeSchedule))
	return res.schedule
}

// SetDefaultRates installs the process-wide default maker/taker rate pair.
func (s *Symbol) SetDefaultRates(ctx context.Context, maker, taker decimal.Decimal) error {
	cmd := newCommand(cmdSetDefaultRates)
	cmd.makerRate, cmd.takerRate = maker, taker
	res := s.sendCtx(ctx, cmd)
	return res.err
}

func (s *Symbol) sendCtx(ctx context.Context, cmd *command) commandResult {
	if ctx == nil {
		return s.send(cmd)
	}
	select {
	case s.cmds <- cmd:
	case <-s.t.Dying():
		return commandResult{err: domain.ErrEngineHalted}
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	}
	select {
	case res := <-cmd.reply:
		return res
	case <-s.t.Dying():
		return commandResult{err: domain.ErrEngineHalted}
	case <-ctx.Done():
		return commandResult{err: ctx.Err()}
	}
}
