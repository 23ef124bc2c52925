package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	sideUnspecified Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unspecified"
	}
}

// Variant is the order type. The conditional variants (STOP_LOSS, STOP_LIMIT,
// TAKE_PROFIT) never touch the book directly: they sit in the trigger table
// until promoted, at which point they are rewritten to MARKET or LIMIT.
type Variant int

const (
	variantUnspecified Variant = iota
	Market
	Limit
	IOC
	FOK
	StopLoss
	StopLimit
	TakeProfit
)

func (v Variant) String() string {
	switch v {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	case StopLoss:
		return "STOP_LOSS"
	case StopLimit:
		return "STOP_LIMIT"
	case TakeProfit:
		return "TAKE_PROFIT"
	default:
		return "UNSPECIFIED"
	}
}

// IsConditional reports whether the variant is admitted into the trigger
// table instead of the book.
func (v Variant) IsConditional() bool {
	return v == StopLoss || v == StopLimit || v == TakeProfit
}

// Status is the lifecycle state of an order. Transitions are monotonic along
// the state machine in the spec's order book component design.
type Status int

const (
	statusUnspecified Status = iota
	Open
	PartiallyFilled
	Filled
	Canceled
	Rejected
	PendingTrigger
)

func (s Status) String() string {
	switch s {
	case Open:
		return "OPEN"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Canceled:
		return "CANCELED"
	case Rejected:
		return "REJECTED"
	case PendingTrigger:
		return "PENDING_TRIGGER"
	default:
		return "UNSPECIFIED"
	}
}

// IsTerminal reports whether the status can never transition again.
func (s Status) IsTerminal() bool {
	return s == Filled || s == Canceled || s == Rejected
}

// IsResting reports whether an order in this status is expected to be present
// in a book's price ladder.
func (s Status) IsResting() bool {
	return s == Open || s == PartiallyFilled
}

// OrderDraft is the caller-supplied request to admit a new order. It carries
// no identity: one is assigned on successful admission.
type OrderDraft struct {
	Symbol   string          `validate:"required"`
	Variant  Variant         `validate:"required"`
	Side     Side            `validate:"required"`
	Quantity decimal.Decimal `validate:"required"`
	UserID   string

	// Price is required for LIMIT, IOC, FOK, and is the post-trigger limit for
	// a STOP_LIMIT draft only via PostTriggerLimitPrice below, not this field.
	Price *decimal.Decimal

	// StopPrice is required for STOP_LOSS, STOP_LIMIT, TAKE_PROFIT.
	StopPrice *decimal.Decimal

	// PostTriggerLimitPrice is required for STOP_LIMIT and becomes the order's
	// Price once the stop condition triggers and it is rewritten to LIMIT.
	PostTriggerLimitPrice *decimal.Decimal
}

// Validate checks the required-field rules of the draft beyond what struct
// tags can express (cross-field, variant-dependent requirements). Called
// after the shared validator.Validate.Struct pass; see domain.Validate.
func (d OrderDraft) Validate() error {
	if d.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	switch d.Variant {
	case Limit, IOC, FOK:
		if d.Price == nil {
			return fmt.Errorf("%w: price is required for %s", ErrInvalidOrder, d.Variant)
		}
	case StopLoss, StopLimit, TakeProfit:
		if d.StopPrice == nil {
			return fmt.Errorf("%w: stop_price is required for %s", ErrInvalidOrder, d.Variant)
		}
		if d.Variant == StopLimit && d.PostTriggerLimitPrice == nil {
			return fmt.Errorf("%w: post-trigger limit price is required for STOP_LIMIT", ErrInvalidOrder)
		}
	case Market:
		// no price-like fields required
	default:
		return fmt.Errorf("%w: unknown variant", ErrInvalidOrder)
	}
	for name, p := range map[string]*decimal.Decimal{
		"price": d.Price, "stop_price": d.StopPrice, "post_trigger_limit_price": d.PostTriggerLimitPrice,
	} {
		if p != nil && p.Sign() <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidOrder, name)
		}
	}
	return nil
}

// Order is the durable representation of an admitted order. Orders are
// mutated only by the matcher (fills), the cancel path, and the trigger
// promoter; terminal orders are never re-introduced.
//
// Field grouping mirrors a hot/cold split: fields touched on every match
// (Price, Quantity, Filled, Side, Variant, Status) follow ID and Symbol at the
// top so they tend to land on the same cache line; audit-only fields (UserID,
// timestamps) come last.
type Order struct {
	ID        string
	Symbol    string
	Price     decimal.Decimal // limit price; for STOP_LIMIT this is set on promotion
	Quantity  decimal.Decimal // original quantity
	Filled    decimal.Decimal
	Side      Side
	Variant   Variant
	Status    Status

	StopPrice              decimal.Decimal
	PostTriggerLimitPrice  decimal.Decimal

	UserID    string
	CreatedAt time.Time

	// listElement is an opaque back-reference to the order's node in its
	// price level's FIFO queue, set by orderbook.PriceLevel on insert and
	// cleared on removal. Only orderbook may interpret it.
	listElement any
}

// Remaining returns the unfilled quantity (original - filled).
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.Filled)
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Remaining().Sign() <= 0
}

// Fill applies a partial or full fill, updating Filled and Status. qty must
// be <= o.Remaining(); callers (the matcher) are responsible for that bound.
func (o *Order) Fill(qty decimal.Decimal) {
	o.Filled = o.Filled.Add(qty)
	if o.IsFilled() {
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
}

// ListElement returns the order's opaque price-level back-reference.
func (o *Order) ListElement() any { return o.listElement }

// SetListElement sets the order's opaque price-level back-reference. Called
// only by orderbook.PriceLevel.
func (o *Order) SetListElement(e any) { o.listElement = e }

// Snapshot is the read-only view of an order returned by lookup and as the
// final state from submit/cancel.
type Snapshot struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Variant   string          `json:"variant"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price,omitempty"`
	StopPrice decimal.Decimal `json:"stop_price,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Filled    decimal.Decimal `json:"filled"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"`
	UserID    string          `json:"user_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToSnapshot converts an Order to its wire-facing read-only view.
func (o *Order) ToSnapshot() Snapshot {
	return Snapshot{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Variant:   o.Variant.String(),
		Side:      o.Side.String(),
		Price:     o.Price,
		StopPrice: o.StopPrice,
		Quantity:  o.Quantity,
		Filled:    o.Filled,
		Remaining: o.Remaining(),
		Status:    o.Status.String(),
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt,
	}
}
