package okvl

import (
	"encoding/binary"
	"fmt"

	dberr "shorekits/pkg/error"
)

// Partitions is the number of hash partitions each key lock is split into.
// It is part of the lock-mode encoding: every process interpreting the same
// LockMode values must be built with the same value. It must be a prime.
const Partitions = 2

// ModeCount is the number of slots in a LockMode: one per partition, then the
// key slot, then the gap slot.
const ModeCount = Partitions + 2

const (
	keyIndex = Partitions
	gapIndex = Partitions + 1
)

const (
	partHashSeed uint32 = 0x35D0B891
	partTailSeed uint8  = 0xDB
)

// PartitionID selects one of the Partitions lock lanes of a key.
type PartitionID uint32

func init() {
	if err := validatePartitionCount(Partitions); err != nil {
		panic(err)
	}
}

func validatePartitionCount(n int) error {
	if n <= 0 || !isPrime(n) {
		err := dberr.New(dberr.ErrCategorySystem, dberr.CodeInvalidPartition, "partition count must be a positive prime")
		err.Detail = fmt.Sprintf("got %d", n)
		err.Component = "OKVL"
		return err
	}
	return nil
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// ComputePartID maps a uniquefier to its partition. The result depends only on
// the bytes, so every transaction touching the same duplicate row contends on
// the same partition.
func ComputePartID(uniquefier []byte) PartitionID {
	return PartitionID(hashUniquefier(uniquefier) % Partitions)
}

// hashUniquefier folds 4-byte little-endian words into a 32-bit accumulator and
// any trailing bytes into an 8-bit one.
func hashUniquefier(b []byte) uint32 {
	var h uint32
	i := 0
	for ; i+4 <= len(b); i += 4 {
		h = h*partHashSeed + binary.LittleEndian.Uint32(b[i:])
	}

	var tail uint8
	for ; i < len(b); i++ {
		tail = tail*partTailSeed + b[i]
	}
	return h ^ uint32(tail)
}

func checkPartition(id PartitionID) {
	if id >= Partitions {
		err := dberr.New(dberr.ErrCategorySystem, dberr.CodeInvalidPartition, "partition id out of range")
		err.Detail = fmt.Sprintf("partition %d, have %d partitions", id, Partitions)
		err.Component = "OKVL"
		panic(err)
	}
}
