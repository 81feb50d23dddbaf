package transaction

import (
	"fmt"
	"sync"
	"time"

	"shorekits/pkg/primitives"
)

// TransactionStatus represents the current state of a transaction
type TransactionStatus int

const (
	TxActive TransactionStatus = iota
	TxCommitting
	TxAborting
	TxCommitted
	TxAborted
)

func (ts TransactionStatus) String() string {
	switch ts {
	case TxActive:
		return "ACTIVE"
	case TxCommitting:
		return "COMMITTING"
	case TxAborting:
		return "ABORTING"
	case TxCommitted:
		return "COMMITTED"
	case TxAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsFinal reports whether the transaction has finished one way or the other.
func (ts TransactionStatus) IsFinal() bool {
	return ts == TxCommitted || ts == TxAborted
}

type TransactionStats struct {
	LocksRequested int
	LocksGranted   int
	Conflicts      int
	RowsRead       int
	RowsWritten    int
	KeysReleased   int
}

// TransactionContext holds the lifecycle state and counters of a single
// transaction. The locks themselves live in the lock manager.
type TransactionContext struct {
	ID *primitives.TransactionID

	status    TransactionStatus
	startTime time.Time
	endTime   time.Time
	mutex     sync.RWMutex

	locksRequested int
	locksGranted   int
	conflicts      int
	rowsRead       int
	rowsWritten    int
	keysReleased   int
}

func NewTransactionContext(tid *primitives.TransactionID) *TransactionContext {
	return &TransactionContext{
		ID:        tid,
		status:    TxActive,
		startTime: time.Now(),
	}
}

// IsActive returns true if the transaction is still active
func (tc *TransactionContext) IsActive() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status == TxActive
}

func (tc *TransactionContext) GetStatus() TransactionStatus {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status
}

// SetStatus updates the transaction status
func (tc *TransactionContext) SetStatus(status TransactionStatus) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.status = status
	if status.IsFinal() {
		tc.endTime = time.Now()
	}
}

// RecordLockRequest counts a lock request and whether it was granted.
func (tc *TransactionContext) RecordLockRequest(granted bool) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.locksRequested++
	if granted {
		tc.locksGranted++
	} else {
		tc.conflicts++
	}
}

func (tc *TransactionContext) RecordRowRead() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.rowsRead++
}

func (tc *TransactionContext) RecordRowWrite() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.rowsWritten++
}

func (tc *TransactionContext) recordRelease(keys int) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.keysReleased += keys
}

// GetStatistics returns a snapshot of transaction statistics
func (tc *TransactionContext) GetStatistics() TransactionStats {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return TransactionStats{
		LocksRequested: tc.locksRequested,
		LocksGranted:   tc.locksGranted,
		Conflicts:      tc.conflicts,
		RowsRead:       tc.rowsRead,
		RowsWritten:    tc.rowsWritten,
		KeysReleased:   tc.keysReleased,
	}
}

// Duration returns how long the transaction has been running, or how long it
// ran once it has finished.
func (tc *TransactionContext) Duration() time.Duration {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.durationLocked()
}

func (tc *TransactionContext) durationLocked() time.Duration {
	endTime := tc.endTime
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(tc.startTime)
}

func (tc *TransactionContext) String() string {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return fmt.Sprintf("Transaction %s [Status=%s, Duration=%v, Granted=%d, Conflicts=%d]",
		tc.ID.String(), tc.status.String(), tc.durationLocked(),
		tc.locksGranted, tc.conflicts)
}
