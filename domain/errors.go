package domain

import "errors"

// Sentinel errors surfaced by the core. Callers should use errors.Is, not string
// comparison: propagation policy is fixed by the spec, wording is not.
var (
	// ErrInvalidOrder is returned when an OrderDraft fails validation: a required
	// field is missing or a price-like field is not strictly positive.
	ErrInvalidOrder = errors.New("domain: invalid order")

	// ErrNoLiquidity is returned for a MARKET order whose opposite side is empty.
	ErrNoLiquidity = errors.New("domain: no liquidity")

	// ErrFOKUnfillable is returned when a FOK order's dry-walk cannot cover its
	// original quantity.
	ErrFOKUnfillable = errors.New("domain: fill-or-kill order cannot be fully filled")

	// ErrNotFound is returned by cancel/lookup for an unknown order id.
	ErrNotFound = errors.New("domain: order not found")

	// ErrTerminalOrder is returned by cancel for an order already in a terminal
	// status (FILLED, CANCELED, REJECTED). Equivalent to ErrNotFound: never
	// recoverable by retry.
	ErrTerminalOrder = ErrNotFound

	// ErrInvalidRate is returned by set_fee_schedule/set_default_rates for a
	// negative maker or taker rate.
	ErrInvalidRate = errors.New("domain: negative fee rate")

	// ErrEngineHalted is returned by every operation on a symbol whose serial
	// worker has died from an unexpected invariant violation. The symbol's state
	// is considered corrupt; the engine does not attempt to resume it.
	ErrEngineHalted = errors.New("domain: symbol engine halted")
)
