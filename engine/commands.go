package engine

import (
	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
)

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdCancel
	cmdLookup
	cmdBBO
	cmdSnapshot
	cmdRecentTrades
	cmdSetFeeSchedule
	cmdGetFeeSchedule
	cmdSetDefaultRates
)

// command is the unit of work handed to a Symbol's serial worker. Every
// command carries its own reply channel so Submit/Cancel/... can block the
// calling goroutine until the worker has processed it — the synchronous-
// to-the-caller semantics spec.md §6 requires, realized over a channel
// instead of the teacher's fire-and-forget queue.
type command struct {
	kind  commandKind
	reply chan commandResult

	draft     domain.OrderDraft
	orderID   string
	depth     int
	limit     int
	makerRate decimal.Decimal
	takerRate decimal.Decimal
}

type commandResult struct {
	order        *domain.Order
	trades       []*domain.Trade
	bbo          domain.BBO
	snapshot     domain.L2Snapshot
	recentTrades []*domain.Trade
	schedule     domain.FeeSchedule
	err          error
}

func newCommand(kind commandKind) *command {
	return &command{kind: kind, reply: make(chan commandResult, 1)}
}
