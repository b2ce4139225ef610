// Package pairing discovers media and subtitle files in a directory and pairs
// them by sorted position.
//
// Scan partitions the regular files of one directory by substring match
// against two tokens. Validate sorts both partitions byte-wise and zips them.
// The i-th media file is assumed to belong with the i-th subtitle file; the
// package cannot check that the two actually correspond.
package pairing
