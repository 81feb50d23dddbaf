package lock

import (
	"bytes"
	"maps"

	"github.com/google/btree"

	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/primitives"
)

const lockTableDegree = 32

// LockTable tracks lock heads by key and, for each transaction, the mode it
// holds on every key it has locked. It is not safe for concurrent use; the
// LockManager serialises access.
type LockTable struct {
	heads            *btree.BTreeG[*LockHead]
	transactionLocks map[*primitives.TransactionID]map[string]okvl.LockMode
}

func lessLockHead(a, b *LockHead) bool {
	return bytes.Compare(a.key, b.key) < 0
}

func NewLockTable() *LockTable {
	return &LockTable{
		heads:            btree.NewG(lockTableDegree, lessLockHead),
		transactionLocks: make(map[*primitives.TransactionID]map[string]okvl.LockMode),
	}
}

// GetLockHead returns the head for key, if any lock is held on it.
func (lt *LockTable) GetLockHead(key []byte) (*LockHead, bool) {
	return lt.heads.Get(&LockHead{key: key})
}

// HeldMode returns the mode tid holds on key, or the empty mode.
func (lt *LockTable) HeldMode(tid *primitives.TransactionID, key []byte) okvl.LockMode {
	return lt.transactionLocks[tid][string(key)]
}

// GrantedMode returns the aggregate mode on key, or the empty mode.
func (lt *LockTable) GrantedMode(key []byte) okvl.LockMode {
	if head, ok := lt.GetLockHead(key); ok {
		return head.granted
	}
	return okvl.New()
}

// AddLock grants mode on key to tid, creating the lock head if needed.
func (lt *LockTable) AddLock(tid *primitives.TransactionID, key []byte, mode okvl.LockMode) {
	head, ok := lt.GetLockHead(key)
	if !ok {
		head = newLockHead(bytes.Clone(key))
		lt.heads.ReplaceOrInsert(head)
	}
	held := head.grant(tid, mode)

	if lt.transactionLocks[tid] == nil {
		lt.transactionLocks[tid] = make(map[string]okvl.LockMode)
	}
	lt.transactionLocks[tid][string(key)] = held
}

// ReleaseLock drops tid's lock on key. Heads left without holders are
// removed from the table.
func (lt *LockTable) ReleaseLock(tid *primitives.TransactionID, key []byte) {
	if head, ok := lt.GetLockHead(key); ok {
		head.release(tid)
		if len(head.holders) == 0 {
			lt.heads.Delete(head)
		}
	}

	if txKeys, ok := lt.transactionLocks[tid]; ok {
		delete(txKeys, string(key))
		updateOrDelete(lt.transactionLocks, tid, txKeys)
	}
}

// ReleaseAllLocks drops every lock held by tid and returns the affected keys
// in key order.
func (lt *LockTable) ReleaseAllLocks(tid *primitives.TransactionID) [][]byte {
	txKeys, ok := lt.transactionLocks[tid]
	if !ok {
		return nil
	}

	released := make([][]byte, 0, len(txKeys))
	for k := range txKeys {
		released = append(released, []byte(k))
	}
	for _, key := range released {
		if head, ok := lt.GetLockHead(key); ok {
			head.release(tid)
			if len(head.holders) == 0 {
				lt.heads.Delete(head)
			}
		}
	}
	delete(lt.transactionLocks, tid)

	sortKeys(released)
	return released
}

func (lt *LockTable) IsKeyLocked(key []byte) bool {
	_, ok := lt.GetLockHead(key)
	return ok
}

// KeysInRange returns the locked keys in [from, to) in key order. A nil to
// means no upper bound.
func (lt *LockTable) KeysInRange(from, to []byte) [][]byte {
	var keys [][]byte
	collect := func(h *LockHead) bool {
		keys = append(keys, bytes.Clone(h.key))
		return true
	}

	if to == nil {
		lt.heads.AscendGreaterOrEqual(&LockHead{key: from}, collect)
	} else {
		lt.heads.AscendRange(&LockHead{key: from}, &LockHead{key: to}, collect)
	}
	return keys
}

// TransactionLocks returns a copy of tid's key to mode index.
func (lt *LockTable) TransactionLocks(tid *primitives.TransactionID) map[string]okvl.LockMode {
	return maps.Clone(lt.transactionLocks[tid])
}

// Len returns the number of locked keys.
func (lt *LockTable) Len() int {
	return lt.heads.Len()
}
