package orderbook

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
)

const defaultTradeHistoryCapacity = 4096

// Book is the two-sided price-time priority order book for one symbol. It
// owns the bid/ask price trees, the id→order index of resting orders, a
// bounded trade history ring, and the cached BBO. It does not know about
// fees, stop orders, or other symbols — those are the Fee Engine's, Trigger
// Table's, and Symbol Engine's concerns respectively.
type Book struct {
	Symbol string

	bids *Tree // descending
	asks *Tree // ascending

	orders map[string]*domain.Order // resting orders only

	history    []*domain.Trade // fixed-capacity ring, newest overwrites oldest
	historyPos int
	historyLen int

	bbo domain.BBO

	tradeSeq uint64
	idGen    func() string
	clock    func() time.Time
}

// Option configures a Book at construction.
type Option func(*Book)

// WithIDGen overrides the trade id generator (default: uuid.NewString).
func WithIDGen(gen func() string) Option { return func(b *Book) { b.idGen = gen } }

// WithClock overrides the book's time source (default: time.Now).
func WithClock(clock func() time.Time) Option { return func(b *Book) { b.clock = clock } }

// WithHistoryCapacity overrides the trade history ring's capacity.
func WithHistoryCapacity(n int) Option {
	return func(b *Book) {
		if n > 0 {
			b.history = make([]*domain.Trade, n)
		}
	}
}

// NewBook creates an empty book for a symbol.
func NewBook(symbol string, opts ...Option) *Book {
	b := &Book{
		Symbol:  symbol,
		bids:    NewTree(true),
		asks:    NewTree(false),
		orders:  make(map[string]*domain.Order),
		history: make([]*domain.Trade, defaultTradeHistoryCapacity),
		idGen:   uuid.NewString,
		clock:   time.Now,
		bbo:     domain.BBO{Symbol: symbol},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Book) treeFor(side domain.Side) *Tree {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *Book) oppositeTree(side domain.Side) *Tree {
	if side == domain.SideBuy {
		return b.asks
	}
	return b.bids
}

func priceAcceptable(o *domain.Order, levelPrice decimal.Decimal) bool {
	if o.Side == domain.SideBuy {
		return o.Price.GreaterThanOrEqual(levelPrice)
	}
	return o.Price.LessThanOrEqual(levelPrice)
}

// Submit runs the regular-variant matching algorithm (MARKET, LIMIT, IOC,
// FOK) for an already-validated, already-identified order. Conditional
// variants (STOP_LOSS, STOP_LIMIT, TAKE_PROFIT) never reach the Book directly
// — the Symbol Engine routes those to the Trigger Table instead.
//
// Returns the trades generated (possibly empty) and a non-nil error only for
// the two cases the spec treats as rejections at the book level: NoLiquidity
// (MARKET, empty opposite side) and FOKUnfillable. In both cases o.Status is
// already set to the correct terminal status before Submit returns.
func (b *Book) Submit(o *domain.Order) ([]*domain.Trade, error) {
	opp := b.oppositeTree(o.Side)

	if o.Variant == domain.Market {
		if opp.IsEmpty() {
			o.Status = domain.Rejected
			return nil, domain.ErrNoLiquidity
		}
		trades := b.walk(o, opp)
		switch {
		case o.IsFilled():
			o.Status = domain.Filled
		case len(trades) > 0:
			o.Status = domain.PartiallyFilled
		default:
			o.Status = domain.Rejected
		}
		b.recomputeBBO()
		return trades, nil
	}

	marketable := !opp.IsEmpty() && priceAcceptable(o, opp.BestLevel().Price)

	if !marketable {
		switch o.Variant {
		case domain.Limit:
			b.rest(o)
			o.Status = domain.Open
		case domain.IOC, domain.FOK:
			o.Status = domain.Canceled
		}
		b.recomputeBBO()
		return nil, nil
	}

	if o.Variant == domain.FOK && !b.dryWalkCovers(o, opp) {
		o.Status = domain.Canceled
		b.recomputeBBO()
		return nil, domain.ErrFOKUnfillable
	}

	trades := b.walk(o, opp)

	switch o.Variant {
	case domain.Limit:
		if o.IsFilled() {
			o.Status = domain.Filled
		} else {
			b.rest(o)
			if len(trades) > 0 {
				o.Status = domain.PartiallyFilled
			} else {
				o.Status = domain.Open
			}
		}
	case domain.IOC:
		switch {
		case o.IsFilled():
			o.Status = domain.Filled
		case len(trades) > 0:
			o.Status = domain.PartiallyFilled
		default:
			o.Status = domain.Canceled
		}
	case domain.FOK:
		// dryWalkCovers guaranteed enough resting quantity at acceptable
		// prices; the real walk fills it completely.
		o.Status = domain.Filled
	}

	b.recomputeBBO()
	return trades, nil
}

// walk executes the price-time-priority matching loop against the opposite
// side. Best level first, earliest arrival first within a level; stops when
// the aggressor is exhausted, the opposite side is exhausted, or (for
// non-MARKET variants) the next level's price is no longer acceptable.
func (b *Book) walk(o *domain.Order, opp *Tree) []*domain.Trade {
	var trades []*domain.Trade
	for o.Remaining().Sign() > 0 {
		level := opp.BestLevel()
		if level == nil {
			break
		}
		if o.Variant != domain.Market && !priceAcceptable(o, level.Price) {
			break
		}
		for o.Remaining().Sign() > 0 && level.Orders.Len() > 0 {
			maker := level.front()
			fill := decimal.Min(o.Remaining(), maker.Remaining())

			o.Fill(fill)
			maker.Fill(fill)

			trades = append(trades, b.recordTrade(o, maker, level.Price, fill))

			if maker.IsFilled() {
				level.removeOrder(maker)
				delete(b.orders, maker.ID)
			} else {
				level.RecomputeVolume()
			}
		}
		opp.DropLevelIfEmpty(level)
	}
	return trades
}

// dryWalkCovers simulates the walk without mutating state, used only to
// decide FOK admissibility before committing to any fill.
func (b *Book) dryWalkCovers(o *domain.Order, opp *Tree) bool {
	acc := decimal.Zero
	opp.WalkLevels(func(level *PriceLevel) bool {
		if !priceAcceptable(o, level.Price) {
			return false
		}
		acc = acc.Add(level.Volume)
		return acc.LessThan(o.Quantity)
	})
	return acc.GreaterThanOrEqual(o.Quantity)
}

func (b *Book) rest(o *domain.Order) {
	b.treeFor(o.Side).Insert(o)
	b.orders[o.ID] = o
}

func (b *Book) recordTrade(aggressor, maker *domain.Order, price, qty decimal.Decimal) *domain.Trade {
	b.tradeSeq++
	trade := &domain.Trade{
		ID:            b.idGen(),
		Seq:           b.tradeSeq,
		Symbol:        b.Symbol,
		Price:         price,
		Quantity:      qty,
		AggressorSide: aggressor.Side,
		MakerOrderID:  maker.ID,
		TakerOrderID:  aggressor.ID,
		MakerFee:      decimal.Zero,
		TakerFee:      decimal.Zero,
		MakerRate:     decimal.Zero,
		TakerRate:     decimal.Zero,
		Timestamp:     b.clock(),
	}
	b.appendHistory(trade)
	return trade
}

func (b *Book) appendHistory(t *domain.Trade) {
	if len(b.history) == 0 {
		return
	}
	b.history[b.historyPos] = t
	b.historyPos = (b.historyPos + 1) % len(b.history)
	if b.historyLen < len(b.history) {
		b.historyLen++
	}
}

// Cancel removes a resting order from the book. Idempotent: cancelling an
// unknown id returns ErrNotFound without mutation.
func (b *Book) Cancel(orderID string) (*domain.Order, error) {
	o, ok := b.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.treeFor(o.Side).Remove(o)
	delete(b.orders, orderID)
	o.Status = domain.Canceled
	b.recomputeBBO()
	return o, nil
}

// Lookup returns a resting order by id, or ErrNotFound.
func (b *Book) Lookup(orderID string) (*domain.Order, error) {
	o, ok := b.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (b *Book) recomputeBBO() {
	b.bbo = domain.BBO{Symbol: b.Symbol, Timestamp: b.clock()}
	if best := b.bids.BestLevel(); best != nil {
		v := best.View()
		b.bbo.Bid = &v
	}
	if best := b.asks.BestLevel(); best != nil {
		v := best.View()
		b.bbo.Ask = &v
	}
}

// BBO returns the book's current best bid/offer.
func (b *Book) BBO() domain.BBO {
	return b.bbo
}

// RestingCounts returns the number of resting orders on each side, for
// metrics reporting.
func (b *Book) RestingCounts() (bids, asks int) {
	for _, o := range b.orders {
		if o.Side == domain.SideBuy {
			bids++
		} else {
			asks++
		}
	}
	return bids, asks
}

// Snapshot returns an L2 view to the requested depth: bids descending by
// price, asks ascending, no duplicate prices or zero-quantity levels (empty
// levels are never retained by Tree, so this holds structurally).
func (b *Book) Snapshot(depth int) domain.L2Snapshot {
	snap := domain.L2Snapshot{Symbol: b.Symbol, Timestamp: b.clock()}
	for _, level := range b.bids.Depth(depth) {
		snap.Bids = append(snap.Bids, level.View())
	}
	for _, level := range b.asks.Depth(depth) {
		snap.Asks = append(snap.Asks, level.View())
	}
	return snap
}

// RecentTrades returns up to limit trades, newest first.
func (b *Book) RecentTrades(limit int) []*domain.Trade {
	if limit <= 0 || b.historyLen == 0 {
		return nil
	}
	if limit > b.historyLen {
		limit = b.historyLen
	}
	out := make([]*domain.Trade, 0, limit)
	idx := b.historyPos - 1
	for i := 0; i < limit; i++ {
		if idx < 0 {
			idx += len(b.history)
		}
		out = append(out, b.history[idx])
		idx--
	}
	return out
}
