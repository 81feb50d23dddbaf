package lock

import (
	"slices"
	"time"

	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/primitives"
)

// Lock is one transaction's grant on a key. Mode is the combine of every
// request the transaction made on the key.
type Lock struct {
	TID       *primitives.TransactionID
	Mode      okvl.LockMode
	GrantTime time.Time
}

func NewLock(tid *primitives.TransactionID, mode okvl.LockMode) *Lock {
	return &Lock{
		TID:       tid,
		Mode:      mode,
		GrantTime: time.Now(),
	}
}

// LockHead is the lock state of a single key.
type LockHead struct {
	key     []byte
	granted okvl.LockMode
	holders []*Lock
}

func newLockHead(key []byte) *LockHead {
	return &LockHead{key: key}
}

func (h *LockHead) Key() []byte {
	return slices.Clone(h.key)
}

// Granted returns the aggregate of every holder's mode.
func (h *LockHead) Granted() okvl.LockMode {
	return h.granted
}

// Holders returns the grants on this key in grant order.
func (h *LockHead) Holders() []*Lock {
	return slices.Clone(h.holders)
}

func (h *LockHead) holder(tid *primitives.TransactionID) *Lock {
	for _, l := range h.holders {
		if l.TID == tid {
			return l
		}
	}
	return nil
}

// othersMode combines the modes of every holder except tid.
func (h *LockHead) othersMode(tid *primitives.TransactionID) okvl.LockMode {
	var agg okvl.LockMode
	for _, l := range h.holders {
		if l.TID != tid {
			agg = okvl.Combine(agg, l.Mode)
		}
	}
	return agg
}

// grant records mode for tid, merging it into any lock tid already holds.
func (h *LockHead) grant(tid *primitives.TransactionID, mode okvl.LockMode) okvl.LockMode {
	if l := h.holder(tid); l != nil {
		l.Mode = okvl.Combine(l.Mode, mode)
		h.granted = okvl.Combine(h.granted, mode)
		return l.Mode
	}

	h.holders = append(h.holders, NewLock(tid, mode))
	h.granted = okvl.Combine(h.granted, mode)
	return mode
}

// release drops tid's lock and rebuilds the aggregate from the remaining
// holders. It reports whether tid held a lock.
func (h *LockHead) release(tid *primitives.TransactionID) bool {
	n := len(h.holders)
	h.holders = removeHolder(h.holders, tid)
	if len(h.holders) == n {
		return false
	}

	h.recompute()
	return true
}

func (h *LockHead) recompute() {
	var agg okvl.LockMode
	for _, l := range h.holders {
		agg = okvl.Combine(agg, l.Mode)
	}
	h.granted = agg
}
