// Package config loads, normalizes, and validates addsubs configuration.
//
// It merges user TOML files with repository defaults, expands ~ paths, and
// exposes helpers such as Workers for the effective job concurrency. A
// missing configuration file is not an error: defaults cover every setting,
// so the tool runs out of the box. CreateSample writes the embedded
// sample_config.toml for users who want to customise it.
package config
