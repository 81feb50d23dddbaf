package okvl

// Partition scans run over the vector eight slots at a time. Each run of eight
// one-byte modes is packed into a little-endian uint64 so an all-N run (a zero
// word) or two identical runs can be skipped with a single comparison.

const batchWidth = 8

func batchWord(p []ElementLockMode) uint64 {
	_ = p[batchWidth-1]
	return uint64(p[0]) |
		uint64(p[1])<<8 |
		uint64(p[2])<<16 |
		uint64(p[3])<<24 |
		uint64(p[4])<<32 |
		uint64(p[5])<<40 |
		uint64(p[6])<<48 |
		uint64(p[7])<<56
}

func compatiblePartitions(requested, granted []ElementLockMode) bool {
	i := 0
	for ; i+batchWidth <= len(requested); i += batchWidth {
		if batchWord(requested[i:]) == 0 || batchWord(granted[i:]) == 0 {
			continue
		}
		for j := i; j < i+batchWidth; j++ {
			if !compat[requested[j]][granted[j]] {
				return false
			}
		}
	}
	for ; i < len(requested); i++ {
		if !compat[requested[i]][granted[i]] {
			return false
		}
	}
	return true
}

func impliedPartitions(sub, super []ElementLockMode) bool {
	i := 0
	for ; i+batchWidth <= len(sub); i += batchWidth {
		w := batchWord(sub[i:])
		if w == 0 || w == batchWord(super[i:]) {
			continue
		}
		for j := i; j < i+batchWidth; j++ {
			if !impliedBy[sub[j]][super[j]] {
				return false
			}
		}
	}
	for ; i < len(sub); i++ {
		if !impliedBy[sub[i]][super[i]] {
			return false
		}
	}
	return true
}

// combinePartitions writes the slot-wise combine of left and right into dst.
// dst may alias either input.
func combinePartitions(dst, left, right []ElementLockMode) {
	i := 0
	for ; i+batchWidth <= len(left); i += batchWidth {
		lw, rw := batchWord(left[i:]), batchWord(right[i:])
		switch {
		case lw == rw || rw == 0:
			copy(dst[i:i+batchWidth], left[i:i+batchWidth])
		case lw == 0:
			copy(dst[i:i+batchWidth], right[i:i+batchWidth])
		default:
			for j := i; j < i+batchWidth; j++ {
				dst[j] = combined[left[j]][right[j]]
			}
		}
	}
	for ; i < len(left); i++ {
		dst[i] = combined[left[i]][right[i]]
	}
}

func containsExclusive(p []ElementLockMode) bool {
	i := 0
	for ; i+batchWidth <= len(p); i += batchWidth {
		if batchWord(p[i:]) == 0 {
			continue
		}
		for j := i; j < i+batchWidth; j++ {
			if p[j] == X {
				return true
			}
		}
	}
	for ; i < len(p); i++ {
		if p[i] == X {
			return true
		}
	}
	return false
}
