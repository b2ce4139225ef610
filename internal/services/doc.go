// Package services defines shared utilities consumed by the batch pipeline
// and the CLI.
//
// Key responsibilities:
//   - Sentinel error markers plus the Wrap helper that tag every failure with
//     its kind, and ExitCode which turns that kind into the process exit code.
//   - Context helpers that stamp batch IDs, job indexes, and stage names for
//     logging.
//
// Use these helpers when wiring new pipeline steps so error classification and
// observability stay uniform.
package services
