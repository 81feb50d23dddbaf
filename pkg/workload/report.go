package workload

import (
	"time"

	"shorekits/pkg/concurrency/okvl"
)

// Report summarises a workload run.
type Report struct {
	Workers   int   `json:"workers"`
	Committed int64 `json:"committed"`
	Aborted   int64 `json:"aborted"`

	// Grants counts lock requests that succeeded, including requests already
	// covered by the transaction's own locks.
	Grants    int64 `json:"grants"`
	Conflicts int64 `json:"conflicts"`

	RowReads  int64 `json:"row_reads"`
	RowWrites int64 `json:"row_writes"`
	Scans     int64 `json:"scans"`

	// ReadOnlyCommits counts committed transactions that held no dirty lock
	// and could have released their locks early.
	ReadOnlyCommits int64 `json:"read_only_commits"`

	// PartitionOccupancy counts granted row locks per partition.
	PartitionOccupancy []int64 `json:"partition_occupancy"`

	Duration   time.Duration `json:"duration_ns"`
	Throughput float64       `json:"throughput_tps"`
}

func newReport(workers int) *Report {
	return &Report{
		Workers:            workers,
		PartitionOccupancy: make([]int64, okvl.Partitions),
	}
}

// merge adds other's counters into r.
func (r *Report) merge(other *Report) {
	r.Committed += other.Committed
	r.Aborted += other.Aborted
	r.Grants += other.Grants
	r.Conflicts += other.Conflicts
	r.RowReads += other.RowReads
	r.RowWrites += other.RowWrites
	r.Scans += other.Scans
	r.ReadOnlyCommits += other.ReadOnlyCommits
	for i, n := range other.PartitionOccupancy {
		r.PartitionOccupancy[i] += n
	}
}

// AbortRate is the share of finished transactions that aborted.
func (r *Report) AbortRate() float64 {
	total := r.Committed + r.Aborted
	if total == 0 {
		return 0
	}
	return float64(r.Aborted) / float64(total)
}

func (r *Report) finish(elapsed time.Duration) {
	r.Duration = elapsed
	if secs := elapsed.Seconds(); secs > 0 {
		r.Throughput = float64(r.Committed) / secs
	}
}
