package workload

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shorekits/pkg/concurrency/lock"
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/concurrency/transaction"
	dberr "shorekits/pkg/error"
	"shorekits/pkg/logging"
)

// KeyName returns the index key for key number i.
func KeyName(i int) []byte {
	return []byte(fmt.Sprintf("CUSTOMER_ACCOUNT:%05d", i))
}

// TradeID returns the uniquefier of row number i under a key.
func TradeID(i int) []byte {
	return []byte(fmt.Sprintf("trade-%07d", i))
}

// Run executes cfg against lm and returns the merged report. It stops early
// with ctx's error if ctx is cancelled.
func Run(ctx context.Context, cfg Config, lm *lock.LockManager) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.WithComponent("workload")
	log.Info("workload starting",
		"workers", cfg.Workers,
		"txns_per_worker", cfg.TxnsPerWorker,
		"keys", cfg.Keys,
		"partitions", okvl.Partitions)

	registry := transaction.NewTransactionRegistry(lm)
	report := newReport(cfg.Workers)
	var mu sync.Mutex

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			wr := &worker{
				cfg:      cfg,
				lm:       lm,
				registry: registry,
				rng:      rand.New(rand.NewSource(cfg.Seed + int64(w))),
				report:   newReport(1),
			}
			err := wr.run(gctx)

			mu.Lock()
			report.merge(wr.report)
			mu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.finish(time.Since(start))

	log.Info("workload finished",
		"committed", report.Committed,
		"aborted", report.Aborted,
		"conflicts", report.Conflicts,
		"duration", report.Duration,
		"throughput_tps", fmt.Sprintf("%.0f", report.Throughput))
	return report, nil
}

type worker struct {
	cfg      Config
	lm       *lock.LockManager
	registry *transaction.TransactionRegistry
	rng      *rand.Rand
	report   *Report
}

func (w *worker) run(ctx context.Context) error {
	for i := 0; i < w.cfg.TxnsPerWorker; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.runTransaction(); err != nil {
			return err
		}
	}
	return nil
}

// runTransaction runs one transaction to commit or abort. Only errors other
// than lock conflicts are returned.
func (w *worker) runTransaction() error {
	txn := w.registry.Begin()

	for op := 0; op < w.cfg.OpsPerTxn; op++ {
		err := w.step(txn)
		if err == nil {
			continue
		}
		if !dberr.HasCode(err, dberr.CodeLockConflict) {
			_ = w.registry.Abort(txn.ID)
			return err
		}

		w.report.Aborted++
		return w.registry.Abort(txn.ID)
	}

	readOnly := w.registry.CanReleaseEarly(txn)
	if err := w.registry.Commit(txn.ID); err != nil {
		return err
	}
	w.report.Committed++
	if readOnly {
		w.report.ReadOnlyCommits++
	}
	return nil
}

// step issues one lock request on behalf of txn.
func (w *worker) step(txn *transaction.TransactionContext) error {
	key := KeyName(w.rng.Intn(w.cfg.Keys))

	if w.rng.Float64() < w.cfg.ScanRatio {
		err := w.lm.LockKey(txn.ID, key, okvl.S, okvl.S)
		w.record(txn, err)
		if err == nil {
			w.report.Scans++
			txn.RecordRowRead()
		}
		return err
	}

	row := TradeID(w.rng.Intn(w.cfg.RowsPerKey))
	write := w.rng.Float64() < w.cfg.WriteRatio
	mode := okvl.S
	if write {
		mode = okvl.X
	}

	err := w.lm.LockRow(txn.ID, key, row, mode)
	w.record(txn, err)
	if err != nil {
		return err
	}

	w.report.PartitionOccupancy[okvl.ComputePartID(row)]++
	if write {
		w.report.RowWrites++
		txn.RecordRowWrite()
	} else {
		w.report.RowReads++
		txn.RecordRowRead()
	}
	return nil
}

func (w *worker) record(txn *transaction.TransactionContext, err error) {
	granted := err == nil
	txn.RecordLockRequest(granted)
	if granted {
		w.report.Grants++
	} else if dberr.HasCode(err, dberr.CodeLockConflict) {
		w.report.Conflicts++
	}
}
