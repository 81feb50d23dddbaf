package lock

import (
	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/primitives"
)

// LockGrantor holds the grant decisions of the lock manager. It reads and
// updates the lock table but keeps no state of its own.
type LockGrantor struct {
	lockTable *LockTable
}

func NewLockGrantor(lockTable *LockTable) *LockGrantor {
	return &LockGrantor{lockTable: lockTable}
}

// HasSufficientLock reports whether the lock tid already holds on key implies
// mode, making a new request redundant.
func (lg *LockGrantor) HasSufficientLock(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) bool {
	held := lg.lockTable.HeldMode(tid, key)
	if held.IsEmpty() {
		return false
	}
	return mode.IsImpliedBy(held)
}

// CanGrantImmediately checks mode against the aggregate on key. When that
// fails and tid is itself a holder, its own grant may be what conflicts (an
// upgrade), so mode is checked again against the other holders only.
func (lg *LockGrantor) CanGrantImmediately(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) bool {
	head, ok := lg.lockTable.GetLockHead(key)
	if !ok {
		return true
	}
	if okvl.IsCompatible(mode, head.granted) {
		return true
	}
	if head.holder(tid) == nil {
		return false
	}
	return okvl.IsCompatible(mode, head.othersMode(tid))
}

// ConflictingHolders lists the other transactions whose grants on key are
// incompatible with mode.
func (lg *LockGrantor) ConflictingHolders(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) []*Lock {
	head, ok := lg.lockTable.GetLockHead(key)
	if !ok {
		return nil
	}

	var conflicts []*Lock
	for _, l := range head.holders {
		if l.TID != tid && !okvl.IsCompatible(mode, l.Mode) {
			conflicts = append(conflicts, l)
		}
	}
	return conflicts
}

// GrantLock records the grant in the lock table.
func (lg *LockGrantor) GrantLock(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) {
	lg.lockTable.AddLock(tid, key, mode)
}
