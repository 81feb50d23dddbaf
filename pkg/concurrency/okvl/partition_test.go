package okvl

import (
	"math/rand"
	"testing"

	dberr "shorekits/pkg/error"
)

func TestHashUniquefier_KnownValues(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint32
	}{
		{"empty", nil, 0},
		{"single tail byte", []byte("1"), 0x31},
		{"one word and a tail byte", []byte("12345"), 0x34333204},
		{"two words", []byte("abcdefgh"), 0xb737d756},
		{"word is little-endian", []byte{0, 0, 0, 1}, 0x01000000},
		{"trade id", []byte("trade-0000042"), 0xac36276b},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hashUniquefier(tt.input); got != tt.want {
				t.Errorf("hashUniquefier(%q) = %#x, want %#x", tt.input, got, tt.want)
			}
			if got, want := ComputePartID(tt.input), PartitionID(tt.want%Partitions); got != want {
				t.Errorf("ComputePartID(%q) = %d, want %d", tt.input, got, want)
			}
		})
	}
}

func TestComputePartID_DeterministicAndInRange(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 10000; i++ {
		u := make([]byte, r.Intn(40))
		r.Read(u)

		id := ComputePartID(u)
		if id >= Partitions {
			t.Fatalf("ComputePartID(%x) = %d out of range", u, id)
		}
		if again := ComputePartID(append([]byte(nil), u...)); again != id {
			t.Fatalf("ComputePartID(%x) changed between calls: %d vs %d", u, id, again)
		}
	}
}

func TestComputePartID_Uniform(t *testing.T) {
	const samples = 100000
	r := rand.New(rand.NewSource(2024))

	var buckets [Partitions]int
	for i := 0; i < samples; i++ {
		u := make([]byte, 1+r.Intn(32))
		r.Read(u)
		buckets[ComputePartID(u)]++
	}

	expected := samples / Partitions
	for id, count := range buckets {
		if diff := count - expected; diff < -expected/20 || diff > expected/20 {
			t.Errorf("partition %d holds %d of %d samples, expected about %d", id, count, samples, expected)
		}
	}
}

// The partition count is a build constant; the raw hash must also spread well
// for the larger primes it may be set to.
func TestHashUniquefier_UniformForOtherPrimes(t *testing.T) {
	const samples = 70000
	r := rand.New(rand.NewSource(17))

	for _, k := range []uint32{3, 7, 13} {
		buckets := make([]int, k)
		for i := 0; i < samples; i++ {
			u := make([]byte, 4+r.Intn(28))
			r.Read(u)
			buckets[hashUniquefier(u)%k]++
		}

		expected := samples / int(k)
		for id, count := range buckets {
			if diff := count - expected; diff < -expected/10 || diff > expected/10 {
				t.Errorf("k=%d: bucket %d holds %d samples, expected about %d", k, id, count, expected)
			}
		}
	}
}

func TestValidatePartitionCount(t *testing.T) {
	tests := []struct {
		n     int
		valid bool
	}{
		{-3, false},
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{8, false},
		{11, true},
		{97, true},
		{121, false},
	}

	for _, tt := range tests {
		err := validatePartitionCount(tt.n)
		if (err == nil) != tt.valid {
			t.Errorf("validatePartitionCount(%d) = %v, want valid=%v", tt.n, err, tt.valid)
		}
		if err != nil && !dberr.HasCode(err, dberr.CodeInvalidPartition) {
			t.Errorf("expected INVALID_PARTITION for %d, got %v", tt.n, err)
		}
	}

	if err := validatePartitionCount(Partitions); err != nil {
		t.Errorf("the configured partition count must be valid: %v", err)
	}
}
