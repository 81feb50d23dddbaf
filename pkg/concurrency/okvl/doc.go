// Package okvl implements the lock-mode algebra of Orthogonal Key-Value
// Locking (OKVL).
//
// # Overview
//
// A key entry in an ordered index is locked along three independent
// dimensions:
//
//   - Partitions: Partitions hash-selected lanes for the duplicates stored
//     under the key. Two transactions touching different duplicates usually
//     land on different partitions and never conflict.
//   - Key: an intent (IS, IX, SIX) summarising the partitions, or an
//     absolute mode (S, X) covering the key and every duplicate under it.
//   - Gap: the open interval up to the next key, locked to stop phantoms.
//
// [LockMode] stores one [ElementLockMode] per dimension slot. Everything else
// is derived from four fixed 6×6 tables over {N, IS, IX, S, SIX, X}:
// compatibility, implication, parent (partition mode to key intent) and
// combine.
//
// # Operations
//
//   - [IsCompatible] decides whether a requested mode may be granted next to
//     an already granted one.
//   - [LockMode.IsImpliedBy] decides whether a request is redundant.
//   - [Combine] merges two modes into an aggregate.
//   - [ComputePartID] maps a uniquefier to its partition.
//
// A lock manager keeps one aggregate LockMode per key. Under its own latch it
// calls IsCompatible(requested, aggregate) and, on success,
// Combine(aggregate, requested). This package never blocks, allocates or
// synchronises; all functions are pure over value types.
//
// # Invariants
//
//   - Setting a partition through [LockMode.SetPartitionMode] raises the key to
//     cover the partition's intent. [LockMode.SetKeyMode] does not check this.
//   - When the key holds S or X the partition slots carry no meaning of their
//     own and are skipped by compatibility and implication. [Combine] copies
//     the other side's partitions verbatim when exactly one side has no
//     partition content, and merges partitions slot by slot otherwise, so N
//     stays the identity and Combine stays commutative.
//   - An out-of-range [PartitionID] panics.
//
// Building with -tags okvldebug makes the hot paths panic on vectors that
// fail [LockMode.Validate].
package okvl
