package lock

import (
	"testing"

	"shorekits/pkg/concurrency/okvl"
	"shorekits/pkg/primitives"
)

func newTestGrantor() (*LockTable, *LockGrantor) {
	lt := NewLockTable()
	return lt, NewLockGrantor(lt)
}

func TestHasSufficientLock(t *testing.T) {
	tests := []struct {
		name      string
		held      okvl.LockMode
		requested okvl.LockMode
		want      bool
	}{
		{"nothing held", okvl.New(), okvl.FromKeyGap(okvl.S, okvl.N), false},
		{"same mode", okvl.FromKeyGap(okvl.S, okvl.N), okvl.FromKeyGap(okvl.S, okvl.N), true},
		{"X implies S", okvl.FromKeyGap(okvl.X, okvl.N), okvl.FromKeyGap(okvl.S, okvl.N), true},
		{"S does not imply X", okvl.FromKeyGap(okvl.S, okvl.N), okvl.FromKeyGap(okvl.X, okvl.N), false},
		{"key X covers any partition", okvl.FromKeyGap(okvl.X, okvl.N), okvl.FromPartition(1, okvl.X), true},
		{"other partition not covered", okvl.FromPartition(0, okvl.X), okvl.FromPartition(1, okvl.S), false},
		{"gap not covered", okvl.FromKeyGap(okvl.X, okvl.N), okvl.FromKeyGap(okvl.N, okvl.S), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt, lg := newTestGrantor()
			tid := primitives.NewTransactionID()
			key := []byte("k")
			if !tt.held.IsEmpty() {
				lt.AddLock(tid, key, tt.held)
			}

			if got := lg.HasSufficientLock(tid, key, tt.requested); got != tt.want {
				t.Errorf("HasSufficientLock(held=%s, req=%s) = %v, want %v", tt.held, tt.requested, got, tt.want)
			}
		})
	}
}

func TestCanGrantImmediately(t *testing.T) {
	tests := []struct {
		name      string
		granted   okvl.LockMode
		requested okvl.LockMode
		want      bool
	}{
		{"unlocked key", okvl.New(), okvl.FromKeyGap(okvl.X, okvl.X), true},
		{"shared readers", okvl.FromKeyGap(okvl.S, okvl.N), okvl.FromKeyGap(okvl.S, okvl.N), true},
		{"writer against reader", okvl.FromKeyGap(okvl.S, okvl.N), okvl.FromKeyGap(okvl.X, okvl.N), false},
		{"different partitions", okvl.FromPartition(0, okvl.X), okvl.FromPartition(1, okvl.X), true},
		{"same partition", okvl.FromPartition(0, okvl.X), okvl.FromPartition(0, okvl.S), false},
		{"gap only against key", okvl.FromKeyGap(okvl.X, okvl.N), okvl.FromKeyGap(okvl.N, okvl.X), true},
		{"partition against key S", okvl.FromKeyGap(okvl.S, okvl.N), okvl.FromPartition(0, okvl.X), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt, lg := newTestGrantor()
			holder := primitives.NewTransactionID()
			requester := primitives.NewTransactionID()
			key := []byte("k")
			if !tt.granted.IsEmpty() {
				lt.AddLock(holder, key, tt.granted)
			}

			if got := lg.CanGrantImmediately(requester, key, tt.requested); got != tt.want {
				t.Errorf("CanGrantImmediately(granted=%s, req=%s) = %v, want %v", tt.granted, tt.requested, got, tt.want)
			}
		})
	}
}

func TestCanGrantImmediately_Upgrade(t *testing.T) {
	lt, lg := newTestGrantor()
	tid := primitives.NewTransactionID()
	key := []byte("k")
	lt.AddLock(tid, key, okvl.FromKeyGap(okvl.S, okvl.N))

	if !lg.CanGrantImmediately(tid, key, okvl.FromKeyGap(okvl.X, okvl.N)) {
		t.Error("sole holder should be able to upgrade S to X")
	}

	other := primitives.NewTransactionID()
	lt.AddLock(other, key, okvl.FromKeyGap(okvl.S, okvl.N))

	if lg.CanGrantImmediately(tid, key, okvl.FromKeyGap(okvl.X, okvl.N)) {
		t.Error("upgrade must fail while another transaction holds S")
	}
}

func TestConflictingHolders(t *testing.T) {
	lt, lg := newTestGrantor()
	t1, t2, t3 := primitives.NewTransactionID(), primitives.NewTransactionID(), primitives.NewTransactionID()
	key := []byte("k")

	lt.AddLock(t1, key, okvl.FromPartition(0, okvl.X))
	lt.AddLock(t2, key, okvl.FromPartition(1, okvl.S))

	conflicts := lg.ConflictingHolders(t3, key, okvl.FromPartition(0, okvl.S))
	if len(conflicts) != 1 || conflicts[0].TID != t1 {
		t.Fatalf("expected only t1 to conflict, got %v", conflicts)
	}

	if got := lg.ConflictingHolders(t1, key, okvl.FromPartition(0, okvl.X)); len(got) != 0 {
		t.Errorf("a transaction never conflicts with itself, got %v", got)
	}
	if got := lg.ConflictingHolders(t3, []byte("unlocked"), okvl.FromKeyGap(okvl.X, okvl.X)); got != nil {
		t.Errorf("unlocked key should have no conflicts, got %v", got)
	}
}
