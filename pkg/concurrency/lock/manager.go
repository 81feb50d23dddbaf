package lock

import (
	"fmt"
	"strings"
	"sync"

	"shorekits/pkg/concurrency/okvl"
	dberr "shorekits/pkg/error"
	"shorekits/pkg/logging"
	"shorekits/pkg/primitives"
)

// LockManager grants OKVL key locks to transactions. It never blocks: a
// request that conflicts with another transaction's grant fails at once.
type LockManager struct {
	mutex       sync.Mutex
	lockTable   *LockTable
	lockGrantor *LockGrantor
}

func NewLockManager() *LockManager {
	lockTable := NewLockTable()
	return &LockManager{
		lockTable:   lockTable,
		lockGrantor: NewLockGrantor(lockTable),
	}
}

// Lock requests mode on key for tid.
//
// A request already implied by tid's own grant returns nil without touching
// the table. Otherwise the request is granted if it is compatible with the
// locks of every other holder, and refused with a LOCK_CONFLICT error if not.
func (lm *LockManager) Lock(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) error {
	if tid == nil {
		return invalidRequest("transaction ID cannot be nil")
	}
	if mode.IsEmpty() {
		return invalidRequest("lock mode must not be empty")
	}

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	log := logging.WithLock(tid.ID(), key)

	if lm.lockGrantor.HasSufficientLock(tid, key, mode) {
		log.Debug("lock already held", "mode", mode.String())
		return nil
	}

	if !lm.lockGrantor.CanGrantImmediately(tid, key, mode) {
		err := lm.conflictError(tid, key, mode)
		log.Debug("lock conflict", "mode", mode.String(), "granted", lm.lockTable.GrantedMode(key).String())
		return err
	}

	lm.lockGrantor.GrantLock(tid, key, mode)
	log.Debug("lock granted", "mode", mode.String())
	return nil
}

// LockKey locks key as a whole together with the gap after it.
func (lm *LockManager) LockKey(tid *primitives.TransactionID, key []byte, keyMode, gapMode okvl.ElementLockMode) error {
	return lm.Lock(tid, key, okvl.FromKeyGap(keyMode, gapMode))
}

// LockRow locks the duplicate of key identified by uniquefier: the partition
// the uniquefier hashes to, plus the matching key intent.
func (lm *LockManager) LockRow(tid *primitives.TransactionID, key, uniquefier []byte, mode okvl.ElementLockMode) error {
	return lm.Lock(tid, key, okvl.FromRow(uniquefier, mode))
}

// Unlock releases tid's lock on key. Under strict two-phase locking this is
// only used to undo a lock taken by mistake; normal release is UnlockAll.
func (lm *LockManager) Unlock(tid *primitives.TransactionID, key []byte) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.lockTable.ReleaseLock(tid, key)
	if tid != nil {
		logging.WithLock(tid.ID(), key).Debug("lock released")
	}
}

// UnlockAll releases every lock held by tid and returns the released keys.
func (lm *LockManager) UnlockAll(tid *primitives.TransactionID) [][]byte {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	released := lm.lockTable.ReleaseAllLocks(tid)
	if tid != nil && len(released) > 0 {
		logging.WithTx(tid.ID()).Debug("locks released", "count", len(released))
	}
	return released
}

// HeldMode returns the mode tid holds on key.
func (lm *LockManager) HeldMode(tid *primitives.TransactionID, key []byte) okvl.LockMode {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return lm.lockTable.HeldMode(tid, key)
}

// GrantedMode returns the aggregate of all grants on key.
func (lm *LockManager) GrantedMode(key []byte) okvl.LockMode {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return lm.lockTable.GrantedMode(key)
}

func (lm *LockManager) IsKeyLocked(key []byte) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return lm.lockTable.IsKeyLocked(key)
}

// LockedKeys returns the locked keys in [from, to); a nil to is unbounded.
func (lm *LockManager) LockedKeys(from, to []byte) [][]byte {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return lm.lockTable.KeysInRange(from, to)
}

// LockCount returns the number of keys tid holds locks on.
func (lm *LockManager) LockCount(tid *primitives.TransactionID) int {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	return len(lm.lockTable.transactionLocks[tid])
}

// HoldsDirtyLock reports whether any lock held by tid contains an X mode,
// i.e. whether tid may have modified something it locked.
func (lm *LockManager) HoldsDirtyLock(tid *primitives.TransactionID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	for _, mode := range lm.lockTable.transactionLocks[tid] {
		if mode.ContainsDirtyLock() {
			return true
		}
	}
	return false
}

func (lm *LockManager) conflictError(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) *dberr.DBError {
	holders := lm.lockGrantor.ConflictingHolders(tid, key, mode)
	names := make([]string, 0, len(holders))
	for _, h := range holders {
		names = append(names, fmt.Sprintf("%s holds %s", h.TID, h.Mode))
	}

	err := dberr.New(dberr.ErrCategoryConcurrency, dberr.CodeLockConflict, "lock request conflicts with granted locks")
	err.Detail = fmt.Sprintf("key %q: %s requested %s, granted %s", key, tid, mode, lm.lockTable.GrantedMode(key))
	if len(names) > 0 {
		err.Detail += " (" + strings.Join(names, "; ") + ")"
	}
	err.Hint = "abort the transaction and retry"
	err.Operation = "Lock"
	err.Component = "LockManager"
	return err
}

func invalidRequest(msg string) *dberr.DBError {
	err := dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidRequest, msg)
	err.Operation = "Lock"
	err.Component = "LockManager"
	return err
}
