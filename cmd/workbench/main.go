// Command workbench loads the work queue with blocks at every priority and
// reports how fast each level drains.
//
// Each block spins for -work before finishing. Progress is printed on a
// ticker, and Ctrl-C raises the work queue stop flag so workers exit at
// their next poll.
//
// Usage:
//
//	go run ./cmd/workbench -workers 8 -blocks 100000 -ratio 4 -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/simcontainers/internal/cancel"
	"github.com/randomizedcoder/simcontainers/internal/tick"
	"github.com/randomizedcoder/simcontainers/internal/workqueue"
)

var priorities = []workqueue.Priority{
	workqueue.PriorityHigh,
	workqueue.PriorityMedium,
	workqueue.PriorityLow,
}

type level struct {
	priority workqueue.Priority
	done     atomic.Int64
	last     atomic.Int64 // ns since start of the last completion
}

type config struct {
	workers  int
	blocks   int
	ratio    int
	work     time.Duration
	progress time.Duration
	timeout  time.Duration
	verbose  bool
}

func (c config) validate() error {
	switch {
	case c.blocks < 1:
		return errors.New("-blocks must be positive")
	case c.work < 0:
		return errors.New("-work must not be negative")
	case c.progress <= 0:
		return errors.New("-progress must be positive")
	case c.timeout <= 0:
		return errors.New("-timeout must be positive")
	}
	return nil
}

func main() {
	var cfg config
	flag.IntVar(&cfg.workers, "workers", -1, "worker goroutines (-1 for NumCPU+1)")
	flag.IntVar(&cfg.blocks, "blocks", 100_000, "blocks per priority")
	flag.IntVar(&cfg.ratio, "ratio", workqueue.DefaultPriorityRatio, "medium blocks per low block")
	flag.DurationVar(&cfg.work, "work", 2*time.Microsecond, "time each block spins")
	flag.DurationVar(&cfg.progress, "progress", tick.DefaultInterval, "progress interval")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "close deadline")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "workbench: %v\n", err)
		os.Exit(2)
	}

	logLevel := slog.LevelInfo
	if cfg.verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stopSignals()
	stop := cancel.NewContext(ctx)

	reg := prometheus.NewRegistry()
	wq, err := workqueue.New(cfg.workers,
		workqueue.WithLogger(logger),
		workqueue.WithPriorityRatio(cfg.ratio),
		workqueue.WithStopFlag(stop),
		workqueue.WithStatsInterval(cfg.progress),
		workqueue.WithMetrics(reg, "workbench"),
	)
	if err != nil {
		logger.Error("start work queue", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Work queue: %d workers, %d blocks per priority, ratio %d, %v per block\n",
		wq.Workers(), cfg.blocks, cfg.ratio, cfg.work)
	fmt.Println("─────────────────────────────────────────────────")

	levels := make([]*level, len(priorities))
	start := time.Now()
	var submit errgroup.Group
	for i, p := range priorities {
		lv := &level{priority: p}
		levels[i] = lv
		submit.Go(func() error {
			for n := 0; n < cfg.blocks; n++ {
				wb := workqueue.NewAction(func() {
					spin(cfg.work)
					lv.done.Add(1)
					lv.last.Store(int64(time.Since(start)))
				})
				if err := wq.AddWorkBlock(wb, p); err != nil {
					return fmt.Errorf("submit %s: %w", p, err)
				}
			}
			return nil
		})
	}
	if err := submit.Wait(); err != nil {
		logger.Error("submit", "error", err)
	}

	want := int64(cfg.blocks * len(priorities))
	ticker := tick.NewTicker(cfg.progress)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-ctx.Done():
			fmt.Println("interrupted")
			break wait
		case <-ticker.C():
			var total int64
			for _, lv := range levels {
				total += lv.done.Load()
			}
			fmt.Printf("  %v: %d/%d done, %d queued\n",
				time.Since(start).Round(time.Millisecond), total, want, wq.TotalQueueSize())
			if total == want {
				break wait
			}
		}
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancelClose()
	if err := wq.CloseContext(closeCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("close", "error", err)
	} else if err != nil {
		logger.Warn("close timed out", "timeout", cfg.timeout)
	}

	fmt.Printf("\nResults:\n")
	for _, lv := range levels {
		done := lv.done.Load()
		last := time.Duration(lv.last.Load())
		rate := 0.0
		if last > 0 {
			rate = float64(done) / last.Seconds() / 1e3
		}
		fmt.Printf("  %-8s %8d blocks  last done at %12v  %8.1f K blocks/sec\n",
			lv.priority, done, last.Round(time.Microsecond), rate)
	}
	s := wq.Stats()
	fmt.Printf("  submitted %d, executed %d, skipped %d\n", s.Submitted, s.Executed, s.Skipped)

	if n, err := countSeries(reg); err == nil {
		fmt.Printf("  %d metric series registered\n", n)
	}
}

// spin burns CPU for d so blocks cost something without sleeping.
func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}

func countSeries(g prometheus.Gatherer) (int, error) {
	mfs, err := g.Gather()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, mf := range mfs {
		n += len(mf.GetMetric())
	}
	return n, nil
}
