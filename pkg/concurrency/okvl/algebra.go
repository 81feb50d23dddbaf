package okvl

// IsCompatible reports whether requested may be granted while granted is held.
//
// The gap is checked independently of the key. Partitions are compared only
// when both sides use the partitioned form; an absolute S or X on either key
// has already been decided by the key check.
func IsCompatible(requested, granted LockMode) bool {
	assertInvariant(requested)
	assertInvariant(granted)
	if requested.IsEmpty() || granted.IsEmpty() {
		return true
	}

	if !compat[requested.modes[gapIndex]][granted.modes[gapIndex]] {
		return false
	}
	if !compat[requested.modes[keyIndex]][granted.modes[keyIndex]] {
		return false
	}
	if requested.IsKeylockPartitionEmpty() || granted.IsKeylockPartitionEmpty() {
		return true
	}
	return compatiblePartitions(requested.modes[:Partitions], granted.modes[:Partitions])
}

// IsCompatibleRequest treats lm as the granted mode and checks requested
// against it.
func (lm LockMode) IsCompatibleRequest(requested LockMode) bool {
	return IsCompatible(requested, lm)
}

// IsCompatibleGrant treats lm as the requested mode and checks it against
// granted.
func (lm LockMode) IsCompatibleGrant(granted LockMode) bool {
	return IsCompatible(lm, granted)
}

// IsImpliedBy reports whether superset already grants everything lm asks
// for, in which case a request for lm is redundant.
func (lm LockMode) IsImpliedBy(superset LockMode) bool {
	if !impliedBy[lm.modes[gapIndex]][superset.modes[gapIndex]] {
		return false
	}
	if !impliedBy[lm.modes[keyIndex]][superset.modes[keyIndex]] {
		return false
	}
	if lm.IsKeylockPartitionEmpty() || superset.IsKeylockPartitionEmpty() {
		return true
	}
	return impliedPartitions(lm.modes[:Partitions], superset.modes[:Partitions])
}

// Combine merges two modes slot by slot.
//
// When exactly one side has no partition content, the other side's
// partitions are copied verbatim; an absolute key lock is not expanded into
// its partitions.
func Combine(left, right LockMode) LockMode {
	var out LockMode
	out.modes[gapIndex] = combined[left.modes[gapIndex]][right.modes[gapIndex]]
	out.modes[keyIndex] = combined[left.modes[keyIndex]][right.modes[keyIndex]]

	leftEmpty, rightEmpty := left.IsKeylockPartitionEmpty(), right.IsKeylockPartitionEmpty()
	switch {
	case leftEmpty && !rightEmpty:
		copy(out.modes[:Partitions], right.modes[:Partitions])
	case rightEmpty && !leftEmpty:
		copy(out.modes[:Partitions], left.modes[:Partitions])
	default:
		combinePartitions(out.modes[:Partitions], left.modes[:Partitions], right.modes[:Partitions])
	}
	return out
}
