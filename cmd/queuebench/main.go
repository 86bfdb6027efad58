// Command queuebench measures queue throughput with several producers and
// consumers.
//
// It runs the same workload through queue.Blocking, queue.Priority, a
// buffered channel and a go-lock-free-ring sharded ring, and prints the
// cost per item.
//
// Usage:
//
//	go run ./cmd/queuebench -n 1000000 -producers 4 -consumers 2
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/simcontainers/internal/queue"
	"github.com/randomizedcoder/simcontainers/internal/tick"
)

type config struct {
	items     int
	producers int
	consumers int
	chanSize  int
	progress  time.Duration
}

type result struct {
	name     string
	duration time.Duration
	popped   int64
	note     string
	skipped  bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.items, "n", 1_000_000, "items per producer")
	flag.IntVar(&cfg.producers, "producers", 4, "number of producers")
	flag.IntVar(&cfg.consumers, "consumers", 1, "number of consumers")
	flag.IntVar(&cfg.chanSize, "size", 1024, "channel capacity")
	flag.DurationVar(&cfg.progress, "progress", tick.DefaultInterval, "progress report interval (0 disables)")
	flag.Parse()

	if cfg.items < 1 || cfg.producers < 1 || cfg.consumers < 1 {
		fmt.Fprintln(os.Stderr, "queuebench: -n, -producers and -consumers must be positive")
		os.Exit(2)
	}

	total := cfg.items * cfg.producers
	fmt.Printf("Benchmarking MPMC queues (%d producers x %d items, %d consumers)\n",
		cfg.producers, cfg.items, cfg.consumers)
	fmt.Println("─────────────────────────────────────────────────")

	runs := []func(config) (result, error){
		runBlocking,
		runPriority,
		runChannel,
		runRing,
	}
	var results []result
	for _, run := range runs {
		r, err := run(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "queuebench: %v\n", err)
			os.Exit(1)
		}
		if r.skipped {
			fmt.Printf("  %s: skipped for %d producers\n", r.name, cfg.producers)
			continue
		}
		if r.popped != int64(total) && r.note == "" {
			fmt.Fprintf(os.Stderr, "queuebench: %s delivered %d of %d items\n", r.name, r.popped, total)
			os.Exit(1)
		}
		results = append(results, r)
	}

	fmt.Printf("\nResults (%d items):\n", total)
	base := perItem(results[0].duration, total)
	for _, r := range results {
		ns := perItem(r.duration, total)
		fmt.Printf("  %-12s %12v  %8.2f ns/item  %6.2f M items/sec  %.2fx%s\n",
			r.name, r.duration.Round(time.Microsecond), ns, 1000/ns, base/ns, r.note)
	}
}

func perItem(d time.Duration, n int) float64 {
	return float64(d.Nanoseconds()) / float64(n)
}

// progress prints a line per interval from the first consumer only.
type progress struct {
	name   string
	ticker *tick.BatchTicker
	start  time.Time
}

func newProgress(name string, interval time.Duration) *progress {
	if interval <= 0 {
		return nil
	}
	return &progress{name: name, ticker: tick.NewBatch(interval, 4096), start: time.Now()}
}

func (p *progress) item() {
	if p != nil && p.ticker.Tick() {
		fmt.Printf("  %s: %d items after %v\n", p.name, p.ticker.Count(), time.Since(p.start).Round(time.Millisecond))
	}
}

// runQueue drives any queue.Queue with sentinel shutdown: each consumer
// stops at the first negative item.
func runQueue(cfg config, name string, q queue.Queue[int], push func(p, i int)) (result, error) {
	var popped atomic.Int64
	var consumers errgroup.Group
	start := time.Now()

	for c := 0; c < cfg.consumers; c++ {
		var prog *progress
		if c == 0 {
			prog = newProgress(name, cfg.progress)
		}
		consumers.Go(func() error {
			var n int64
			for v := q.Pop(); v >= 0; v = q.Pop() {
				n++
				prog.item()
			}
			popped.Add(n)
			return nil
		})
	}

	var producers errgroup.Group
	for p := 0; p < cfg.producers; p++ {
		producers.Go(func() error {
			for i := 0; i < cfg.items; i++ {
				push(p, i)
			}
			return nil
		})
	}
	if err := producers.Wait(); err != nil {
		return result{}, err
	}
	for c := 0; c < cfg.consumers; c++ {
		q.Push(-1)
	}
	if err := consumers.Wait(); err != nil {
		return result{}, err
	}
	return result{name: name, duration: time.Since(start), popped: popped.Load()}, nil
}

func runBlocking(cfg config) (result, error) {
	q := queue.New[int]()
	return runQueue(cfg, "Blocking", q, func(_, i int) { q.Push(i) })
}

func runPriority(cfg config) (result, error) {
	q := queue.NewPriority[int]()
	return runQueue(cfg, "Priority", q, func(_, i int) {
		if i&15 == 0 {
			q.PushPriority(i)
			return
		}
		q.Push(i)
	})
}

func runChannel(cfg config) (result, error) {
	ch := make(chan int, cfg.chanSize)
	var popped atomic.Int64
	var consumers errgroup.Group
	start := time.Now()

	for c := 0; c < cfg.consumers; c++ {
		var prog *progress
		if c == 0 {
			prog = newProgress("Channel", cfg.progress)
		}
		consumers.Go(func() error {
			var n int64
			for range ch {
				n++
				prog.item()
			}
			popped.Add(n)
			return nil
		})
	}

	var producers errgroup.Group
	for p := 0; p < cfg.producers; p++ {
		producers.Go(func() error {
			for i := 0; i < cfg.items; i++ {
				ch <- i
			}
			return nil
		})
	}
	if err := producers.Wait(); err != nil {
		return result{}, err
	}
	close(ch)
	if err := consumers.Wait(); err != nil {
		return result{}, err
	}
	return result{name: "Channel", duration: time.Since(start), popped: popped.Load()}, nil
}

// newRing builds a sharded ring with one shard per producer and 1024 slots
// per shard.
func newRing(producers int) (write func(pid uint64, v int) bool, read func(), err error) {
	if err := checkRingProducers(producers); err != nil {
		return nil, nil, err
	}
	r, err := ring.NewShardedRing(uint64(1024*producers), uint64(producers))
	if err != nil {
		return nil, nil, err
	}
	return func(pid uint64, v int) bool { return r.Write(pid, v) }, func() { r.TryRead() }, nil
}

// checkRingProducers accepts shard counts that are a power of two no
// larger than 8.
func checkRingProducers(producers int) error {
	switch producers {
	case 1, 2, 4, 8:
		return nil
	default:
		return errRingProducers
	}
}

var errRingProducers = errors.New("sharded ring needs 1, 2, 4 or 8 producers")

// runRing measures producer time into a sharded ring. The ring is
// single-consumer, so -consumers is ignored.
func runRing(cfg config) (result, error) {
	write, read, err := newRing(cfg.producers)
	if errors.Is(err, errRingProducers) {
		return result{name: "ShardedRing", skipped: true}, nil
	}
	if err != nil {
		return result{}, fmt.Errorf("sharded ring: %w", err)
	}

	done := make(chan struct{})
	var consumer errgroup.Group
	consumer.Go(func() error {
		for {
			select {
			case <-done:
				return nil
			default:
				read()
			}
		}
	})

	start := time.Now()
	var producers errgroup.Group
	for p := 0; p < cfg.producers; p++ {
		pid := uint64(p)
		producers.Go(func() error {
			for i := 0; i < cfg.items; i++ {
				for !write(pid, i) {
				}
			}
			return nil
		})
	}
	if err := producers.Wait(); err != nil {
		return result{}, err
	}
	d := time.Since(start)
	close(done)
	if err := consumer.Wait(); err != nil {
		return result{}, err
	}
	return result{name: "ShardedRing", duration: d, note: "  (producer side, 1 consumer)"}, nil
}
