// Package logging assembles structured slog loggers and formatting helpers used
// across addsubs.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with batch IDs and job indexes. Terminal output goes to
// stderr so the pair table and batch summary on stdout stay machine-readable;
// an optional log directory receives a JSON copy of every record.
package logging
