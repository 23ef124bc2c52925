// Command engine wires config, logging, metrics, persistence, the emitter
// hub, and the Symbol registry into a runnable process. The HTTP/WebSocket
// edge that would front this process is out of the core's scope (spec.md
// §1); this binary only proves the core's wiring, exposing metrics and a
// trivial signal-driven lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/lightningcore/matchcore/config"
	"github.com/lightningcore/matchcore/emitter"
	"github.com/lightningcore/matchcore/engine"
	"github.com/lightningcore/matchcore/fees"
	"github.com/lightningcore/matchcore/logging"
	"github.com/lightningcore/matchcore/metrics"
	"github.com/lightningcore/matchcore/persistence"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Pretty)

	feeEngine := fees.NewEngine(config.Rate(cfg.Fees.DefaultMakerRateBp), config.Rate(cfg.Fees.DefaultTakerRateBp))
	hub := emitter.NewHub(cfg.Emitter.RingCapacity)
	writer := persistence.NoopWriter{}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(prometheus.DefaultRegisterer)
	}

	registry := engine.NewRegistry(feeEngine,
		engine.WithRegistryWriter(writer),
		engine.WithRegistryMetrics(collector),
		engine.WithRegistryHub(hub),
	)

	for _, sym := range cfg.Symbols {
		registry.Get(sym.Name)
		if sym.MakerRateBp > 0 || sym.TakerRateBp > 0 {
			if _, err := registry.Get(sym.Name).SetFeeSchedule(context.Background(), config.Rate(sym.MakerRateBp), config.Rate(sym.TakerRateBp)); err != nil {
				log.Fatal().Err(err).Str("symbol", sym.Name).Msg("invalid configured fee schedule")
			}
		}
		log.Info().Str("symbol", sym.Name).Msg("symbol engine started")
	}

	var srv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if srv != nil {
		_ = srv.Shutdown(context.Background())
	}
	if err := registry.Close(); err != nil {
		log.Error().Err(err).Msg("registry shutdown")
	}
}
