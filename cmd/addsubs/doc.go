// Package main hosts the addsubs CLI entrypoint and command graph.
//
// The root command runs one batch: it pairs the media and subtitle files of
// a directory, asks for confirmation, and muxes every pair into the output
// directory. Subcommands list languages, check tool availability, inspect
// batch history, and scaffold configuration. Process exit codes follow the
// failure kind so scripts can tell a rejected batch from a failed one.
package main
