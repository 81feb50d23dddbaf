package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shorekits/pkg/concurrency/lock"
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/workload"
)

func TestMetricsCollector_RecordRound(t *testing.T) {
	mc := NewMetricsCollector(lock.NewLockManager(), workload.DefaultConfig())

	report := &workload.Report{
		Committed:          9,
		Aborted:            1,
		Grants:             40,
		Conflicts:          1,
		PartitionOccupancy: make([]int64, okvl.Partitions),
	}
	report.PartitionOccupancy[0] = 7
	mc.RecordRound(report, nil)
	mc.RecordRound(report, nil)

	out := mc.GetMetrics()
	for _, want := range []string{
		"shorekits_workload_rounds_total 2",
		"shorekits_transactions_committed_total 18",
		"shorekits_transactions_aborted_total 2",
		"shorekits_lock_grants_total 80",
		`shorekits_partition_row_locks_total{partition="0"} 14`,
		"shorekits_up 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %q:\n%s", want, out)
		}
	}
	if !mc.Healthy() {
		t.Error("collector should be healthy after successful rounds")
	}
}

func TestMetricsCollector_FailedRound(t *testing.T) {
	mc := NewMetricsCollector(lock.NewLockManager(), workload.DefaultConfig())
	mc.RecordRound(nil, errors.New("boom"))

	if mc.Healthy() {
		t.Error("collector should report unhealthy after a failed round")
	}
	if out := mc.GetMetrics(); !strings.Contains(out, "shorekits_up 0") {
		t.Errorf("expected up 0:\n%s", out)
	}
}

func TestHandlers(t *testing.T) {
	mc := NewMetricsCollector(lock.NewLockManager(), workload.DefaultConfig())
	mux := newMux(mc)

	tests := []struct {
		name     string
		path     string
		fail     bool
		wantCode int
		wantBody string
	}{
		{"metrics", "/metrics", false, http.StatusOK, "# TYPE shorekits_lock_conflicts_total counter"},
		{"healthy", "/health", false, http.StatusOK, "OK"},
		{"failing", "/health", true, http.StatusServiceUnavailable, "FAILING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fail {
				mc.RecordRound(nil, errors.New("boom"))
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q:\n%s", tt.wantBody, rec.Body.String())
			}
		})
	}
}
