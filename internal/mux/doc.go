// Package mux builds one external muxing command per confirmed pair and runs
// them through a bounded worker pool.
//
// Every job is built before anything touches the filesystem, so an oversized
// command line fails the batch with no output directory left behind. The
// output directory is then created exactly once and the jobs run on K
// workers, each result stored at its input index. A non-zero exit marks that
// job Failed without affecting its siblings. A launch or wait failure stops
// further launches, waits for running jobs, and is returned together with
// the index-aligned results.
//
// Processes are started with exec.Command, not exec.CommandContext:
// cancelling the context stops new launches but never kills a running tool.
package mux
