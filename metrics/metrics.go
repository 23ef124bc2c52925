// Package metrics instruments the core with a small set of Prometheus
// counters and gauges. The core calls into Collector the same way it calls
// into persistence.Writer — an injected collaborator,
// nil-safe, never required for correctness.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds the process's order-engine metrics. A nil *Collector is
// valid and every method becomes a no-op, so callers that don't wire metrics
// don't need a null-object stand-in.
type Collector struct {
	ordersSubmitted  *prometheus.CounterVec
	tradesExecuted   *prometheus.CounterVec
	triggerPromotion *prometheus.CounterVec
	restingOrders    *prometheus.GaugeVec
	bestBid          *prometheus.GaugeVec
	bestAsk          *prometheus.GaugeVec
}

// NewCollector creates and registers the engine's metrics against reg. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() in tests to avoid collisions between runs.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_submitted_total",
			Help:      "Orders admitted, by symbol and variant.",
		}, []string{"symbol", "variant"}),
		tradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "trades_executed_total",
			Help:      "Trades executed, by symbol.",
		}, []string{"symbol"}),
		triggerPromotion: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "trigger_promotions_total",
			Help:      "Conditional orders promoted out of the trigger table, by symbol and variant.",
		}, []string{"symbol", "variant"}),
		restingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "resting_orders",
			Help:      "Resting orders currently in the book, by symbol and side.",
		}, []string{"symbol", "side"}),
		bestBid: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "best_bid",
			Help:      "Current best bid price, by symbol.",
		}, []string{"symbol"}),
		bestAsk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "best_ask",
			Help:      "Current best ask price, by symbol.",
		}, []string{"symbol"}),
	}
	reg.MustRegister(c.ordersSubmitted, c.tradesExecuted, c.triggerPromotion,
		c.restingOrders, c.bestBid, c.bestAsk)
	return c
}

func (c *Collector) OrderSubmitted(symbol, variant string) {
	if c == nil {
		return
	}
	c.ordersSubmitted.WithLabelValues(symbol, variant).Inc()
}

func (c *Collector) TradesExecuted(symbol string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.tradesExecuted.WithLabelValues(symbol).Add(float64(n))
}

func (c *Collector) TriggerPromoted(symbol, variant string) {
	if c == nil {
		return
	}
	c.triggerPromotion.WithLabelValues(symbol, variant).Inc()
}

func (c *Collector) SetRestingOrders(symbol, side string, n int) {
	if c == nil {
		return
	}
	c.restingOrders.WithLabelValues(symbol, side).Set(float64(n))
}

func (c *Collector) SetBBO(symbol string, bid, ask float64, hasBid, hasAsk bool) {
	if c == nil {
		return
	}
	if hasBid {
		c.bestBid.WithLabelValues(symbol).Set(bid)
	}
	if hasAsk {
		c.bestAsk.WithLabelValues(symbol).Set(ask)
	}
}
