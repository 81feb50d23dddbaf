// Package logging provides the process-wide structured logger for shorekits.
//
// The package wraps [log/slog] behind a single global logger. Call Init once
// at startup (or rely on the lazy INFO-level stderr default) and obtain
// loggers through GetLogger or one of the context helpers:
//
//	log := logging.WithLock(txID, key)
//	log.Debug("lock granted", "mode", mode)
//
// The OKVL algebra itself never logs; only the lock runtime, the workload
// driver and the command-line tools do.
package logging
