// Package batch runs one addsubs batch from language lookup to history.
//
// The order is fixed: resolve the language (before any filesystem access),
// scan and pair, ask for confirmation, build jobs and create the output
// directory, take the batch lock, run the jobs, aggregate, and record
// history. A rejected confirmation returns before anything is written.
package batch
