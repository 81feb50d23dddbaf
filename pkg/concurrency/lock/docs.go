// Package lock implements a key-level lock table for shorekits built on the
// OKVL lock-mode algebra in package okvl.
//
// # Overview
//
// Every locked key has a [LockHead] holding the aggregate mode of all
// granted locks on the key together with each holder's own mode. A request
// is granted when it is compatible with the aggregate, after which the
// aggregate becomes Combine(aggregate, requested). This is the integration
// contract of the okvl package, executed under the [LockManager] mutex.
//
// Locks follow strict two-phase locking: a transaction accumulates locks
// while it runs and releases them all at commit or abort through
// [LockManager.UnlockAll].
//
// The table never waits. A request that is not compatible with the other
// holders fails immediately with a LOCK_CONFLICT error; the caller is
// expected to abort and retry. There is therefore no wait queue and no
// deadlock detection.
//
// # Components
//
//   - [LockTable]: lock heads kept in a B-tree ordered by key bytes, so
//     key ranges can be enumerated, plus a per-transaction index of the modes
//     each transaction holds.
//   - [LockGrantor]: stateless decisions: is a request already implied by
//     the transaction's own grant, can it be granted now, who blocks it.
//   - [LockManager]: the public entry point serialising access to the table.
//
// # Lock requests
//
// Requests are okvl.LockMode values. The helpers cover the common shapes:
//
//   - [LockManager.LockRow] locks one duplicate under a key: the partition
//     chosen by hashing the uniquefier, with the matching key intent.
//   - [LockManager.LockKey] locks the key as a whole plus its gap, as scans
//     do.
//
// Two transactions writing different duplicates of the same key usually hash
// to different partitions and are both granted.
package lock
