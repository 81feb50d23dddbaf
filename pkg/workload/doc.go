// Package workload drives the OKVL lock manager with a synthetic
// trade-processing load.
//
// Each worker runs transactions against a fixed set of non-unique keys (think
// of a secondary index on customer account) whose duplicates are trade rows
// identified by a trade-id uniquefier. A transaction either locks single rows,
// which land in the partition their uniquefier hashes to, or scans a key by
// locking it whole together with its gap. The lock manager never waits, so a
// conflicting request aborts the transaction.
//
// The report shows how often writers to different rows of the same key were
// able to proceed side by side, and how evenly uniquefiers spread over the
// partitions.
package workload
