// Package preflight provides readiness checks for the tools and paths a
// batch depends on. The "addsubs check" command prints them; nothing in the
// batch path calls them, so a batch never pays for these checks.
package preflight
