package engine

import (
	"sync"
	"sync/atomic"

	"github.com/lightningcore/matchcore/emitter"
	"github.com/lightningcore/matchcore/fees"
	"github.com/lightningcore/matchcore/metrics"
	"github.com/lightningcore/matchcore/persistence"
)

// Registry maps symbol name to its Symbol worker, creating one lazily on
// first reference. Grounded on the teacher's ExchangeEngine: reads go
// through an atomic.Value holding an immutable map, so the hot path (a
// symbol that already exists) never takes a lock; writes (a brand new
// symbol) copy-on-write under mu, which is rare relative to read traffic.
type Registry struct {
	symbols atomic.Value // map[string]*Symbol
	mu      sync.Mutex

	fees    *fees.Engine
	writer  persistence.Writer
	metrics *metrics.Collector
	hub     *emitter.Hub
}

// RegistryOption configures symbols created by a Registry.
type RegistryOption func(*Registry)

func WithRegistryWriter(w persistence.Writer) RegistryOption {
	return func(r *Registry) { r.writer = w }
}

func WithRegistryMetrics(c *metrics.Collector) RegistryOption {
	return func(r *Registry) { r.metrics = c }
}

func WithRegistryHub(h *emitter.Hub) RegistryOption {
	return func(r *Registry) { r.hub = h }
}

// NewRegistry creates an empty registry sharing one fee Engine process-wide.
func NewRegistry(feeEngine *fees.Engine, opts ...RegistryOption) *Registry {
	r := &Registry{
		fees:   feeEngine,
		writer: persistence.NoopWriter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.symbols.Store(make(map[string]*Symbol))
	return r
}

// Get returns the Symbol worker for name, creating and starting it if this
// is the first reference.
func (r *Registry) Get(name string) *Symbol {
	symbols := r.symbols.Load().(map[string]*Symbol)
	if s, ok := symbols[name]; ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	symbols = r.symbols.Load().(map[string]*Symbol)
	if s, ok := symbols[name]; ok {
		return s
	}

	opts := []Option{WithWriter(r.writer)}
	if r.metrics != nil {
		opts = append(opts, WithMetrics(r.metrics))
	}
	if r.hub != nil {
		opts = append(opts, WithHub(r.hub))
	}
	s := NewSymbol(name, r.fees, opts...)

	next := make(map[string]*Symbol, len(symbols)+1)
	for k, v := range symbols {
		next[k] = v
	}
	next[name] = s
	r.symbols.Store(next)

	return s
}

// Symbols returns the names of every symbol created so far.
func (r *Registry) Symbols() []string {
	symbols := r.symbols.Load().(map[string]*Symbol)
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	return names
}

// Close stops every symbol worker and waits for them to exit.
func (r *Registry) Close() error {
	symbols := r.symbols.Load().(map[string]*Symbol)
	var firstErr error
	for _, s := range symbols {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
