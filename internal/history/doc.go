// Package history keeps a SQLite record of finished batches.
//
// Each batch writes one row to batches and one row per job to batch_jobs in a
// single transaction. The store is write-once per batch and read by the
// history command; nothing in it is used to resume work.
package history
