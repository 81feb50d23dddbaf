package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"shorekits/pkg/concurrency/lock"
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/logging"
	"shorekits/pkg/primitives"
	"shorekits/pkg/workload"
)

// LatencyResult captures timing statistics for repeated single lock requests.
type LatencyResult struct {
	Name              string        `json:"name"`
	Iterations        int           `json:"iterations"`
	Concurrency       int           `json:"concurrency"`
	TotalDuration     time.Duration `json:"total_duration_ns"`
	AvgDuration       time.Duration `json:"avg_duration_ns"`
	MinDuration       time.Duration `json:"min_duration_ns"`
	MaxDuration       time.Duration `json:"max_duration_ns"`
	MedianDuration    time.Duration `json:"median_duration_ns"`
	P95Duration       time.Duration `json:"p95_duration_ns"`
	P99Duration       time.Duration `json:"p99_duration_ns"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	GrantedCount      int           `json:"granted_count"`
	ConflictCount     int           `json:"conflict_count"`
	ConflictSamples   []string      `json:"conflict_samples"`
	Timestamp         time.Time     `json:"timestamp"`
}

// WorkloadResult is one workload scenario and its report.
type WorkloadResult struct {
	Name   string           `json:"name"`
	Config workload.Config  `json:"config"`
	Report *workload.Report `json:"report"`
}

// BenchmarkReport aggregates every result of one benchmark run.
type BenchmarkReport struct {
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	TotalDuration time.Duration    `json:"total_duration"`
	Partitions    int              `json:"partitions"`
	Latency       []LatencyResult  `json:"latency"`
	Workloads     []WorkloadResult `json:"workloads"`
}

// lockRequest is one timed request. It returns the lock error, if any.
type lockRequest func(lm *lock.LockManager, i int) error

// main runs the benchmark suite and writes benchmark-report.json.
//
// Environment variables:
//   - BENCHMARK_OUTPUT: Directory for the report (default: ./benchmark-results)
//   - BENCHMARK_WORKERS: Concurrent workers (default: 8)
//   - BENCHMARK_TXNS: Transactions per worker, also the latency iteration count (default: 10000)
func main() {
	outputDir := filepath.Clean(os.Getenv("BENCHMARK_OUTPUT"))
	if outputDir == "." {
		outputDir = "./benchmark-results"
	}
	workers := envInt("BENCHMARK_WORKERS", 8)
	txns := envInt("BENCHMARK_TXNS", 10000)

	if err := logging.Init(logging.Config{Level: logging.LevelInfo}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logging.Close()
	log := logging.WithComponent("benchmark")

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		log.Error("cannot create output directory", "dir", outputDir, "error", err)
		os.Exit(1)
	}

	log.Info("starting benchmark suite", "workers", workers, "txns", txns, "partitions", okvl.Partitions)

	report := BenchmarkReport{
		StartTime:  time.Now(),
		Partitions: okvl.Partitions,
	}

	latencyBenchmarks := []struct {
		name    string
		request lockRequest
	}{
		{"row X, distinct keys", func(lm *lock.LockManager, i int) error {
			tid := primitives.NewTransactionID()
			defer lm.UnlockAll(tid)
			return lm.LockRow(tid, workload.KeyName(i), workload.TradeID(i), okvl.X)
		}},
		{"row X, one hot key", func(lm *lock.LockManager, i int) error {
			tid := primitives.NewTransactionID()
			defer lm.UnlockAll(tid)
			return lm.LockRow(tid, workload.KeyName(0), workload.TradeID(i), okvl.X)
		}},
		{"scan S, one hot key", func(lm *lock.LockManager, i int) error {
			tid := primitives.NewTransactionID()
			defer lm.UnlockAll(tid)
			return lm.LockKey(tid, workload.KeyName(0), okvl.S, okvl.S)
		}},
	}

	for _, bench := range latencyBenchmarks {
		for _, concurrency := range []int{1, workers} {
			name := fmt.Sprintf("%s (x%d)", bench.name, concurrency)
			result := runLatencyBenchmark(name, bench.request, txns, concurrency)
			report.Latency = append(report.Latency, result)
			printLatencyResult(result)
		}
	}

	for _, scenario := range workloadScenarios(workers, txns/workers+1) {
		lm := lock.NewLockManager()
		r, err := workload.Run(context.Background(), scenario.Config, lm)
		if err != nil {
			log.Error("workload failed", "scenario", scenario.Name, "error", err)
			continue
		}
		scenario.Report = r
		report.Workloads = append(report.Workloads, scenario)
		log.Info("workload scenario",
			"scenario", scenario.Name,
			"committed", r.Committed,
			"aborted", r.Aborted,
			"abort_rate", fmt.Sprintf("%.4f", r.AbortRate()),
			"throughput_tps", fmt.Sprintf("%.0f", r.Throughput))
	}

	report.EndTime = time.Now()
	report.TotalDuration = report.EndTime.Sub(report.StartTime)

	jsonFile := filepath.Join(outputDir, "benchmark-report.json")
	if err := saveJSONReport(report, jsonFile); err != nil {
		log.Error("cannot write report", "file", jsonFile, "error", err)
		os.Exit(1)
	}
	log.Info("benchmark suite complete", "duration", formatDuration(report.TotalDuration), "report", jsonFile)
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logging.Warn("ignoring invalid environment value", "name", name, "value", v)
		return def
	}
	return n
}

func workloadScenarios(workers, txnsPerWorker int) []WorkloadResult {
	base := workload.DefaultConfig()
	base.Workers = workers
	base.TxnsPerWorker = txnsPerWorker

	readHeavy := base
	readHeavy.WriteRatio = 0.1

	writeHeavy := base
	writeHeavy.WriteRatio = 0.9

	hotKey := base
	hotKey.Keys = 1
	hotKey.WriteRatio = 0.9
	hotKey.ScanRatio = 0

	scanHeavy := base
	scanHeavy.ScanRatio = 0.5

	return []WorkloadResult{
		{Name: "read heavy", Config: readHeavy},
		{Name: "write heavy", Config: writeHeavy},
		{Name: "hot key", Config: hotKey},
		{Name: "scan heavy", Config: scanHeavy},
	}
}

func runLatencyBenchmark(name string, request lockRequest, iterations, concurrent int) LatencyResult {
	lm := lock.NewLockManager()
	durations := make([]time.Duration, 0, iterations)
	var mu sync.Mutex
	var wg sync.WaitGroup

	granted := 0
	conflicts := 0
	samples := make([]string, 0, 5)
	startTime := time.Now()

	sem := make(chan struct{}, concurrent)

	for i := range iterations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			requestStart := time.Now()
			err := request(lm, i)
			duration := time.Since(requestStart)

			mu.Lock()
			durations = append(durations, duration)
			if err != nil {
				conflicts++
				if len(samples) < 5 {
					samples = append(samples, err.Error())
				}
			} else {
				granted++
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	totalDuration := time.Since(startTime)

	slices.Sort(durations)

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return LatencyResult{
		Name:              name,
		Iterations:        iterations,
		Concurrency:       concurrent,
		TotalDuration:     totalDuration,
		AvgDuration:       sum / time.Duration(len(durations)),
		MinDuration:       durations[0],
		MaxDuration:       durations[len(durations)-1],
		MedianDuration:    durations[len(durations)/2],
		P95Duration:       durations[int(float64(len(durations))*0.95)],
		P99Duration:       durations[int(float64(len(durations))*0.99)],
		RequestsPerSecond: float64(iterations) / totalDuration.Seconds(),
		GrantedCount:      granted,
		ConflictCount:     conflicts,
		ConflictSamples:   samples,
		Timestamp:         time.Now(),
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d.Nanoseconds())/1000)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func printLatencyResult(r LatencyResult) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %s\n", r.Name)
	fmt.Printf("    Requests:   %d granted, %d conflicts\n", r.GrantedCount, r.ConflictCount)
	fmt.Printf("    Latency:    avg %s, p50 %s, p95 %s, p99 %s, max %s\n",
		formatDuration(r.AvgDuration), formatDuration(r.MedianDuration),
		formatDuration(r.P95Duration), formatDuration(r.P99Duration), formatDuration(r.MaxDuration))
	fmt.Printf("    Throughput: %.0f req/s\n", r.RequestsPerSecond)
}

func saveJSONReport(report BenchmarkReport, filename string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}
