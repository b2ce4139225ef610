// Package language resolves ISO 639-2 codes to the human-readable track names
// passed to the muxer.
//
// The table is built once at startup from a fixed set of common languages plus
// any entries supplied through configuration, then handed to the batch runner
// as an immutable value.
package language
