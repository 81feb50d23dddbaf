package okvl

// LockMode is the full OKVL mode of one key entry: a submode per partition,
// one for the key as a whole, and one for the gap up to the next key.
//
// The zero value holds no lock. LockMode is a plain value; copies are
// independent and compare equal with == when all slots match.
type LockMode struct {
	modes [ModeCount]ElementLockMode
}

// New returns a LockMode with every slot set to N.
func New() LockMode {
	return LockMode{}
}

// FromKeyGap builds a whole-key lock, as used by scans that must protect the
// key regardless of which duplicates exist under it.
func FromKeyGap(key, gap ElementLockMode) LockMode {
	var lm LockMode
	lm.modes[keyIndex] = key
	lm.modes[gapIndex] = gap
	return lm
}

// FromPartition builds a lock on a single partition. The key slot receives the
// matching intent mode.
func FromPartition(id PartitionID, mode ElementLockMode) LockMode {
	var lm LockMode
	lm.SetPartitionMode(id, mode)
	return lm
}

// FromRow locks the partition selected by uniquefier.
func FromRow(uniquefier []byte, mode ElementLockMode) LockMode {
	return FromPartition(ComputePartID(uniquefier), mode)
}

// PartitionMode returns the mode held on partition id.
func (lm LockMode) PartitionMode(id PartitionID) ElementLockMode {
	checkPartition(id)
	return lm.modes[id]
}

// SetPartitionMode sets one partition and raises the key slot so it covers the
// partition's intent.
func (lm *LockMode) SetPartitionMode(id PartitionID, mode ElementLockMode) {
	checkPartition(id)
	lm.modes[id] = mode
	lm.modes[keyIndex] = combined[parentMode[mode]][lm.modes[keyIndex]]
}

// KeyMode returns the mode held on the key as a whole.
func (lm LockMode) KeyMode() ElementLockMode {
	return lm.modes[keyIndex]
}

// SetKeyMode overwrites the key slot. Partitions are left untouched; callers
// must not lower the key below the intent of any partition.
func (lm *LockMode) SetKeyMode(mode ElementLockMode) {
	lm.modes[keyIndex] = mode
}

// GapMode returns the mode held on the gap after the key.
func (lm LockMode) GapMode() ElementLockMode {
	return lm.modes[gapIndex]
}

func (lm *LockMode) SetGapMode(mode ElementLockMode) {
	lm.modes[gapIndex] = mode
}

// Slots returns a copy of every slot: partitions, then key, then gap.
func (lm LockMode) Slots() [ModeCount]ElementLockMode {
	return lm.modes
}

// IsEmpty reports whether the mode holds nothing. Partitions are not scanned:
// any partition lock implies an intent on the key.
func (lm LockMode) IsEmpty() bool {
	return lm.modes[keyIndex] == N && lm.modes[gapIndex] == N
}

func (lm LockMode) IsKeylockEmpty() bool {
	return lm.modes[keyIndex] == N
}

// IsKeylockPartitionEmpty reports whether the partition slots carry no
// information of their own: either nothing is locked on the key or the key
// holds an absolute S or X lock that covers every partition.
func (lm LockMode) IsKeylockPartitionEmpty() bool {
	k := lm.modes[keyIndex]
	return k == N || k == S || k == X
}

// ContainsDirtyLock reports whether an X lock is held anywhere, key or gap.
// The transaction layer uses it to decide if the resource may have been
// modified.
func (lm LockMode) ContainsDirtyLock() bool {
	if lm.modes[gapIndex] == X {
		return true
	}
	return lm.ContainsDirtyKeyLock()
}

// ContainsDirtyKeyLock is ContainsDirtyLock restricted to the key and its
// partitions.
func (lm LockMode) ContainsDirtyKeyLock() bool {
	assertInvariant(lm)
	switch lm.modes[keyIndex] {
	case X:
		return true
	case IX, SIX:
		return containsExclusive(lm.modes[:Partitions])
	default:
		return false
	}
}

// Clear resets every slot to N.
func (lm *LockMode) Clear() {
	*lm = LockMode{}
}

func (lm LockMode) Equal(other LockMode) bool {
	return lm.modes == other.modes
}

func (lm LockMode) NotEqual(other LockMode) bool {
	return lm.modes != other.modes
}
