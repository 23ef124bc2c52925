// Command bench drives the public Symbol API with concurrent producers and
// reports order/trade throughput, the way the teacher's cmd/benchmark did
// against its fire-and-forget channel API. cmd/profile's CPU-profiling flag
// is folded in here as -cpuprofile rather than kept as a separate binary:
// the only difference between the teacher's two commands was whether
// pprof.StartCPUProfile wrapped the same loop, which is one flag, not a
// second program.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lightningcore/matchcore/domain"
	"github.com/lightningcore/matchcore/engine"
	"github.com/lightningcore/matchcore/fees"
	"github.com/lightningcore/matchcore/persistence"
)

func main() {
	duration := flag.Duration("duration", 5*time.Second, "how long to drive the engine")
	workers := flag.Int("workers", runtime.NumCPU()-2, "number of concurrent producer goroutines")
	cpuProfile := flag.String("cpuprofile", "", "write a CPU profile to this path")
	flag.Parse()

	if *workers < 1 {
		*workers = 1
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create cpu profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	writer := persistence.NewMemoryWriter()
	symbol := engine.NewSymbol("BTC-USDT", fees.NewEngine(decimal.NewFromFloat(0.001), decimal.NewFromFloat(0.002)), engine.WithWriter(writer))
	defer symbol.Close()

	var orderCount, tradeCount atomic.Int64

	fmt.Printf("matchcore bench: %d workers, %s duration\n", *workers, *duration)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	done := make(chan struct{})
	for w := 0; w < *workers; w++ {
		go func(workerID int) {
			defer func() { done <- struct{}{} }()
			i := 0
			for ctx.Err() == nil {
				side := domain.SideBuy
				if i%2 == 1 {
					side = domain.SideSell
				}
				price := decimal.NewFromInt(50000 + int64(i%200))
				draft := domain.OrderDraft{
					Symbol:   "BTC-USDT",
					Variant:  domain.Limit,
					Side:     side,
					Quantity: decimal.NewFromInt(1),
					Price:    &price,
				}
				_, trades, err := symbol.Submit(ctx, draft)
				if err == nil {
					orderCount.Add(1)
					tradeCount.Add(int64(len(trades)))
				}
				i++
			}
		}(w)
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	start := time.Now()
	finished := 0
loop:
	for finished < *workers {
		select {
		case <-done:
			finished++
		case <-ticker.C:
			elapsed := time.Since(start).Seconds()
			fmt.Printf("[%.0fs] orders=%d (%.0f/s) trades=%d (%.0f/s)\n",
				elapsed, orderCount.Load(), float64(orderCount.Load())/elapsed,
				tradeCount.Load(), float64(tradeCount.Load())/elapsed)
		}
		if finished >= *workers {
			break loop
		}
	}

	elapsed := time.Since(start)
	totalOrders := orderCount.Load()
	totalTrades := tradeCount.Load()

	fmt.Println("\n=== results ===")
	fmt.Printf("elapsed:        %v\n", elapsed)
	fmt.Printf("orders:         %d (%.0f/s)\n", totalOrders, float64(totalOrders)/elapsed.Seconds())
	fmt.Printf("trades:         %d (%.0f/s)\n", totalTrades, float64(totalTrades)/elapsed.Seconds())

	bbo := symbol.BBO(context.Background())
	fmt.Println("\n=== book state ===")
	if bbo.Bid != nil {
		fmt.Printf("best bid: %s @ %s\n", bbo.Bid.Quantity, bbo.Bid.Price)
	}
	if bbo.Ask != nil {
		fmt.Printf("best ask: %s @ %s\n", bbo.Ask.Quantity, bbo.Ask.Price)
	}
	fmt.Printf("persisted trades: %d\n", len(writer.Trades()))
}
