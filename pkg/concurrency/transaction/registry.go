package transaction

import (
	"sync"

	dberr "shorekits/pkg/error"
	"shorekits/pkg/logging"
	"shorekits/pkg/primitives"
)

// LockReleaser is the part of the lock manager the registry needs to end a
// transaction.
type LockReleaser interface {
	UnlockAll(tid *primitives.TransactionID) [][]byte
	HoldsDirtyLock(tid *primitives.TransactionID) bool
}

// TransactionRegistry tracks running transactions and ends them. Locks are
// held until Commit or Abort, which release them all at once.
type TransactionRegistry struct {
	contexts map[*primitives.TransactionID]*TransactionContext
	mutex    sync.RWMutex
	locks    LockReleaser
}

func NewTransactionRegistry(locks LockReleaser) *TransactionRegistry {
	return &TransactionRegistry{
		contexts: make(map[*primitives.TransactionID]*TransactionContext),
		locks:    locks,
	}
}

// Begin creates a new transaction context and registers it
func (tr *TransactionRegistry) Begin() *TransactionContext {
	tid := primitives.NewTransactionID()
	ctx := NewTransactionContext(tid)

	tr.mutex.Lock()
	tr.contexts[tid] = ctx
	tr.mutex.Unlock()

	logging.WithTx(tid.ID()).Debug("transaction started")
	return ctx
}

// Get retrieves a registered transaction.
func (tr *TransactionRegistry) Get(tid *primitives.TransactionID) (*TransactionContext, error) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	ctx, exists := tr.contexts[tid]
	if !exists {
		err := dberr.New(dberr.ErrCategoryUser, dberr.CodeTransactionNotFound, "transaction not found")
		if tid != nil {
			err.Detail = tid.String()
		}
		err.Component = "TransactionRegistry"
		return nil, err
	}
	return ctx, nil
}

// Commit ends tid successfully, releases its locks and unregisters it.
func (tr *TransactionRegistry) Commit(tid *primitives.TransactionID) error {
	return tr.finish(tid, TxCommitting, TxCommitted, "Commit")
}

// Abort ends tid unsuccessfully, releases its locks and unregisters it.
func (tr *TransactionRegistry) Abort(tid *primitives.TransactionID) error {
	return tr.finish(tid, TxAborting, TxAborted, "Abort")
}

func (tr *TransactionRegistry) finish(tid *primitives.TransactionID, during, final TransactionStatus, op string) error {
	ctx, err := tr.Get(tid)
	if err != nil {
		return dberr.Wrap(err, dberr.CodeTransactionNotFound, op, "TransactionRegistry")
	}

	ctx.mutex.Lock()
	if ctx.status != TxActive {
		status := ctx.status
		ctx.mutex.Unlock()

		notActive := dberr.New(dberr.ErrCategoryUser, dberr.CodeTransactionNotActive, "transaction is not active")
		notActive.Detail = tid.String() + " is " + status.String()
		notActive.Operation = op
		notActive.Component = "TransactionRegistry"
		return notActive
	}
	ctx.status = during
	ctx.mutex.Unlock()

	released := tr.locks.UnlockAll(tid)
	ctx.recordRelease(len(released))
	ctx.SetStatus(final)

	tr.mutex.Lock()
	delete(tr.contexts, tid)
	tr.mutex.Unlock()

	logging.WithTx(tid.ID()).Debug("transaction finished",
		"status", final.String(),
		"released", len(released),
		"duration", ctx.Duration())
	return nil
}

// CanReleaseEarly reports whether the transaction holds no dirty lock. Such a
// transaction changed nothing, so its locks may be dropped as soon as it
// requests commit rather than after its commit record is durable.
func (tr *TransactionRegistry) CanReleaseEarly(ctx *TransactionContext) bool {
	return !tr.locks.HoldsDirtyLock(ctx.ID)
}

// GetActive returns all active transaction contexts
func (tr *TransactionRegistry) GetActive() []*TransactionContext {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	active := make([]*TransactionContext, 0, len(tr.contexts))
	for _, ctx := range tr.contexts {
		if ctx.IsActive() {
			active = append(active, ctx)
		}
	}
	return active
}

// Count returns the number of registered transactions
func (tr *TransactionRegistry) Count() int {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()
	return len(tr.contexts)
}
