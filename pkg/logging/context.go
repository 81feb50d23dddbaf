package logging

import (
	"fmt"
	"log/slog"
)

// WithTx returns a logger tagged with a transaction id.
func WithTx(txID int64) *slog.Logger {
	return GetLogger().With("tx_id", txID)
}

// WithLock returns a logger tagged with a transaction and the key it locks.
// Keys are rendered with %q so binary uniquefiers stay readable.
//
//	log := logging.WithLock(tid.ID(), key)
//	log.Debug("lock granted", "mode", mode.String())
func WithLock(txID int64, key []byte) *slog.Logger {
	return GetLogger().With("tx_id", txID, "key", fmt.Sprintf("%q", key))
}

// WithComponent returns a logger tagged with a subsystem name.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError returns a logger carrying err as a structured field.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
