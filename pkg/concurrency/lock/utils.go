package lock

import (
	"bytes"
	"slices"

	"shorekits/pkg/primitives"
)

// removeHolder drops every lock held by tid while keeping grant order.
func removeHolder(holders []*Lock, tid *primitives.TransactionID) []*Lock {
	return slices.DeleteFunc(holders, func(l *Lock) bool {
		return l.TID == tid
	})
}

// updateOrDelete stores inner under key, or deletes key when inner is empty,
// so the transaction index never keeps empty maps around.
func updateOrDelete[K comparable, IK comparable, V any](m map[K]map[IK]V, key K, inner map[IK]V) {
	if len(inner) > 0 {
		m[key] = inner
	} else {
		delete(m, key)
	}
}

func sortKeys(keys [][]byte) {
	slices.SortFunc(keys, bytes.Compare)
}
