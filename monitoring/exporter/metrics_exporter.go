package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"shorekits/pkg/concurrency/lock"
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/logging"
	"shorekits/pkg/workload"
)

// MetricsCollector accumulates the reports of repeated workload rounds.
type MetricsCollector struct {
	lockManager *lock.LockManager
	config      workload.Config

	rounds         int64
	committed      int64
	aborted        int64
	grants         int64
	conflicts      int64
	readOnly       int64
	occupancy      []int64
	lastThroughput float64
	lastRoundTime  time.Time
	lastError      error
	mu             sync.RWMutex
}

func NewMetricsCollector(lm *lock.LockManager, cfg workload.Config) *MetricsCollector {
	return &MetricsCollector{
		lockManager:   lm,
		config:        cfg,
		occupancy:     make([]int64, okvl.Partitions),
		lastRoundTime: time.Now(),
	}
}

// RecordRound folds one workload report into the totals.
func (mc *MetricsCollector) RecordRound(r *workload.Report, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.lastRoundTime = time.Now()
	mc.lastError = err
	if err != nil {
		return
	}

	mc.rounds++
	mc.committed += r.Committed
	mc.aborted += r.Aborted
	mc.grants += r.Grants
	mc.conflicts += r.Conflicts
	mc.readOnly += r.ReadOnlyCommits
	for i, n := range r.PartitionOccupancy {
		mc.occupancy[i] += n
	}
	mc.lastThroughput = r.Throughput
}

// Healthy reports whether the last round finished without error.
func (mc *MetricsCollector) Healthy() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.lastError == nil
}

// GetMetrics renders the totals in the Prometheus text format.
func (mc *MetricsCollector) GetMetrics() string {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var b strings.Builder
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP shorekits_%s %s\n# TYPE shorekits_%s %s\nshorekits_%s %v\n\n", name, help, name, kind, name, value)
	}

	metric("workload_rounds_total", "counter", "Workload rounds completed", mc.rounds)
	metric("transactions_committed_total", "counter", "Transactions committed", mc.committed)
	metric("transactions_aborted_total", "counter", "Transactions aborted on a lock conflict", mc.aborted)
	metric("transactions_read_only_total", "counter", "Committed transactions that held no dirty lock", mc.readOnly)
	metric("lock_grants_total", "counter", "Lock requests granted", mc.grants)
	metric("lock_conflicts_total", "counter", "Lock requests refused", mc.conflicts)
	metric("throughput_tps", "gauge", "Committed transactions per second in the last round", fmt.Sprintf("%.2f", mc.lastThroughput))
	metric("lock_table_keys", "gauge", "Keys currently locked", len(mc.lockManager.LockedKeys(nil, nil)))

	b.WriteString("# HELP shorekits_partition_row_locks_total Row locks granted per partition\n")
	b.WriteString("# TYPE shorekits_partition_row_locks_total counter\n")
	for i, n := range mc.occupancy {
		fmt.Fprintf(&b, "shorekits_partition_row_locks_total{partition=\"%d\"} %d\n", i, n)
	}
	b.WriteString("\n")

	up := 1
	if mc.lastError != nil {
		up = 0
	}
	metric("up", "gauge", "Workload status (1 = running, 0 = failing)", up)
	metric("last_round_timestamp_seconds", "gauge", "Unix timestamp of the last workload round", mc.lastRoundTime.Unix())

	return b.String()
}

// Run executes workload rounds until ctx is cancelled.
func (mc *MetricsCollector) Run(ctx context.Context, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := workload.Run(ctx, mc.config, mc.lockManager)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn("workload round failed", "error", err)
		}
		mc.RecordRound(report, err)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func newMux(collector *MetricsCollector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprint(w, collector.GetMetrics())
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !collector.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "FAILING")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	return mux
}

func main() {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "8080"
	}

	interval := 5 * time.Second
	if v := os.Getenv("WORKLOAD_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	if err := logging.Init(logging.Config{Level: logging.LevelInfo, Format: "json"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logging.Close()
	log := logging.WithComponent("exporter")

	cfg := workload.DefaultConfig()
	cfg.TxnsPerWorker = 200
	if path := os.Getenv("WORKLOAD_CONFIG"); path != "" {
		loaded, err := workload.LoadConfig(path)
		if err != nil {
			log.Error("cannot load workload config", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	collector := NewMetricsCollector(lock.NewLockManager(), cfg)
	go collector.Run(ctx, interval, log)

	srv := &http.Server{
		Addr:         ":" + metricsPort,
		Handler:      newMux(collector),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics exporter listening", "port", metricsPort, "interval", interval)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
