package primitives

import (
	"fmt"
	"sync/atomic"
)

var transactionCounter atomic.Int64

// TransactionID identifies a transaction. Lock tables key their indexes by
// the pointer, so a transaction must use the same *TransactionID throughout.
type TransactionID struct {
	id int64
}

// NewTransactionID allocates the next id from a process-wide counter.
func NewTransactionID() *TransactionID {
	return &TransactionID{id: transactionCounter.Add(1)}
}

// NewTransactionIDFromValue wraps an existing id value, e.g. one read back
// from a report.
func NewTransactionIDFromValue(id int64) *TransactionID {
	return &TransactionID{id: id}
}

func (tid *TransactionID) ID() int64 {
	return tid.id
}

func (tid *TransactionID) String() string {
	return fmt.Sprintf("TID-%d", tid.id)
}

func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}
