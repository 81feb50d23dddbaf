package okvl

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// randomLockMode returns a vector in the shape the setters produce: either a
// whole-key lock with empty partitions, or partitions set one by one with the
// key raised accordingly and possibly strengthened by an extra intent.
func randomLockMode(r *rand.Rand) LockMode {
	gap := AllElementModes[r.Intn(elementModeCount)]
	if r.Intn(3) == 0 {
		return FromKeyGap(AllElementModes[r.Intn(elementModeCount)], gap)
	}

	var lm LockMode
	for id := PartitionID(0); id < Partitions; id++ {
		if r.Intn(2) == 0 {
			lm.SetPartitionMode(id, AllElementModes[r.Intn(elementModeCount)])
		}
	}
	if r.Intn(4) == 0 {
		lm.SetKeyMode(CombineElements(lm.KeyMode(), []ElementLockMode{IS, IX}[r.Intn(2)]))
	}
	lm.SetGapMode(gap)
	return lm
}

func naiveIsCompatible(requested, granted LockMode) bool {
	if requested.IsEmpty() || granted.IsEmpty() {
		return true
	}
	rs, gs := requested.Slots(), granted.Slots()
	if !Compatible(rs[gapIndex], gs[gapIndex]) || !Compatible(rs[keyIndex], gs[keyIndex]) {
		return false
	}
	if requested.IsKeylockPartitionEmpty() || granted.IsKeylockPartitionEmpty() {
		return true
	}
	for i := 0; i < Partitions; i++ {
		if !Compatible(rs[i], gs[i]) {
			return false
		}
	}
	return true
}

func naiveIsImpliedBy(sub, super LockMode) bool {
	ss, ps := sub.Slots(), super.Slots()
	if !ImpliedBy(ss[gapIndex], ps[gapIndex]) || !ImpliedBy(ss[keyIndex], ps[keyIndex]) {
		return false
	}
	if sub.IsKeylockPartitionEmpty() || super.IsKeylockPartitionEmpty() {
		return true
	}
	for i := 0; i < Partitions; i++ {
		if !ImpliedBy(ss[i], ps[i]) {
			return false
		}
	}
	return true
}

func TestScenario_EmptyIsCompatibleWithEverything(t *testing.T) {
	a := New()
	if !a.IsEmpty() {
		t.Fatal("New() must be empty")
	}

	others := []LockMode{
		FromKeyGap(X, X),
		FromKeyGap(S, N),
		FromPartition(0, X),
		FromKeyGap(SIX, IX),
	}
	for _, b := range others {
		if !IsCompatible(a, b) || !IsCompatible(b, a) {
			t.Errorf("empty mode must be compatible with %s", b)
		}
	}
}

func TestScenario_SharedVsExclusiveKey(t *testing.T) {
	b := FromKeyGap(S, N)
	c := FromKeyGap(X, N)

	if IsCompatible(b, c) {
		t.Error("S key request must conflict with granted X key")
	}
	if IsCompatible(c, b) {
		t.Error("X key request must conflict with granted S key")
	}
}

func TestScenario_OrthogonalPartitions(t *testing.T) {
	d := FromPartition(0, IS)
	e := FromPartition(1, X)

	if d.KeyMode() != IS {
		t.Errorf("expected D key IS, got %s", d.KeyMode())
	}
	if e.KeyMode() != IX {
		t.Errorf("expected E key IX, got %s", e.KeyMode())
	}
	if !IsCompatible(d, e) {
		t.Error("locks on different partitions of one key must be compatible")
	}

	got := Combine(d, e)
	want := slots([Partitions]ElementLockMode{IS, X}, IX, N)
	if diff := cmp.Diff(want, got.Slots()); diff != "" {
		t.Errorf("Combine(D, E) mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_PartIDStable(t *testing.T) {
	first := ComputePartID([]byte("12345"))
	second := ComputePartID([]byte("12345"))

	if first != second {
		t.Errorf("ComputePartID is not deterministic: %d vs %d", first, second)
	}
	if first >= Partitions {
		t.Errorf("ComputePartID returned %d, want < %d", first, Partitions)
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		name      string
		requested LockMode
		granted   LockMode
		want      bool
	}{
		{"same partition X vs S", FromPartition(0, X), FromPartition(0, S), false},
		{"same partition S vs S", FromPartition(1, S), FromPartition(1, S), true},
		{"same partition IX vs IS", FromPartition(1, IX), FromPartition(1, IS), true},
		{"row X vs key S", FromPartition(0, X), FromKeyGap(S, N), false},
		{"row S vs key S", FromPartition(0, S), FromKeyGap(S, N), true},
		{"row X vs gap S", FromPartition(0, X), FromKeyGap(N, S), true},
		{"gap X vs gap S", FromKeyGap(N, X), FromKeyGap(N, S), false},
		{"gap S vs gap S", FromKeyGap(IS, S), FromKeyGap(IS, S), true},
		{"key S vs key IX without partitions", FromKeyGap(S, N), FromKeyGap(IX, N), false},
		{"key SIX vs row S", FromKeyGap(SIX, N), FromPartition(0, S), true},
		{"key SIX vs row X", FromKeyGap(SIX, N), FromPartition(0, X), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompatible(tt.requested, tt.granted); got != tt.want {
				t.Errorf("IsCompatible(%s, %s) = %v, want %v", tt.requested, tt.granted, got, tt.want)
			}
			if got := tt.granted.IsCompatibleRequest(tt.requested); got != tt.want {
				t.Errorf("IsCompatibleRequest disagrees with IsCompatible")
			}
			if got := tt.requested.IsCompatibleGrant(tt.granted); got != tt.want {
				t.Errorf("IsCompatibleGrant disagrees with IsCompatible")
			}
		})
	}
}

func TestIsImpliedBy(t *testing.T) {
	tests := []struct {
		name     string
		sub      LockMode
		superset LockMode
		want     bool
	}{
		{"empty by anything", New(), FromPartition(0, IS), true},
		{"row S by key S", FromPartition(0, S), FromKeyGap(S, N), true},
		{"row X by key S", FromPartition(0, X), FromKeyGap(S, N), false},
		{"row X by key X", FromPartition(1, X), FromKeyGap(X, N), true},
		{"row S by same row X", FromPartition(1, S), FromPartition(1, X), true},
		{"row S by other row X", FromPartition(1, S), FromPartition(0, X), false},
		{"gap S by key X", FromKeyGap(N, S), FromKeyGap(X, N), false},
		{"key S gap S by itself", FromKeyGap(S, S), FromKeyGap(S, S), true},
		{"key X by key S", FromKeyGap(X, N), FromKeyGap(S, N), false},
		{"something by empty", FromKeyGap(IS, N), New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.IsImpliedBy(tt.superset); got != tt.want {
				t.Errorf("%s.IsImpliedBy(%s) = %v, want %v", tt.sub, tt.superset, got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name  string
		left  LockMode
		right LockMode
		want  [ModeCount]ElementLockMode
	}{
		{
			name:  "key S with gap S",
			left:  FromKeyGap(S, N),
			right: FromKeyGap(N, S),
			want:  slots([Partitions]ElementLockMode{}, S, S),
		},
		{
			name:  "key S with row X",
			left:  FromKeyGap(S, N),
			right: FromPartition(1, X),
			want:  slots([Partitions]ElementLockMode{N, X}, SIX, N),
		},
		{
			name:  "same partition S and IX",
			left:  FromPartition(0, S),
			right: FromPartition(0, IX),
			want:  slots([Partitions]ElementLockMode{SIX, N}, IX, N),
		},
		{
			name:  "absolute X absorbs",
			left:  FromKeyGap(X, X),
			right: FromPartition(0, S),
			want:  slots([Partitions]ElementLockMode{S, N}, X, X),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.left, tt.right)
			if diff := cmp.Diff(tt.want, got.Slots()); diff != "" {
				t.Errorf("Combine mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCombineProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		a, b := randomLockMode(r), randomLockMode(r)

		if got := Combine(a, New()); got != a {
			t.Fatalf("Combine(%s, N) = %s", a, got)
		}
		if got := Combine(New(), a); got != a {
			t.Fatalf("Combine(N, %s) = %s", a, got)
		}
		if got := Combine(a, a); got != a {
			t.Fatalf("Combine(%s, itself) = %s", a, got)
		}
		if ab, ba := Combine(a, b), Combine(b, a); ab != ba {
			t.Fatalf("Combine is not commutative: %s vs %s", ab, ba)
		}

		c := Combine(a, b)
		if !a.IsImpliedBy(c) || !b.IsImpliedBy(c) {
			t.Fatalf("Combine(%s, %s) = %s does not imply both inputs", a, b, c)
		}
		if err := c.Validate(); err != nil {
			t.Fatalf("Combine(%s, %s) produced an invalid vector: %v", a, b, err)
		}
	}
}

func TestImpliedByProperties(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	for i := 0; i < 5000; i++ {
		a := randomLockMode(r)
		if !a.IsImpliedBy(a) {
			t.Fatalf("%s must imply itself", a)
		}
		if !New().IsImpliedBy(a) {
			t.Fatalf("empty mode must be implied by %s", a)
		}
		if !a.IsEmpty() && a.IsImpliedBy(New()) {
			t.Fatalf("non-empty %s must not be implied by the empty mode", a)
		}
	}
}

func TestAlgebraMatchesNaiveScan(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	for i := 0; i < 20000; i++ {
		a, b := randomLockMode(r), randomLockMode(r)

		if got, want := IsCompatible(a, b), naiveIsCompatible(a, b); got != want {
			t.Fatalf("IsCompatible(%s, %s) = %v, naive %v", a, b, got, want)
		}
		if got, want := a.IsImpliedBy(b), naiveIsImpliedBy(a, b); got != want {
			t.Fatalf("%s.IsImpliedBy(%s) = %v, naive %v", a, b, got, want)
		}
	}
}
