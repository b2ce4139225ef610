package mux

import "addsubs/internal/pairing"

// BatchStatus summarises a batch.
type BatchStatus int

const (
	AllSucceeded BatchStatus = iota
	PartialFailure
)

func (s BatchStatus) String() string {
	if s == AllSucceeded {
		return "all_succeeded"
	}
	return "partial_failure"
}

// BatchResult holds one outcome per job in input order. It is built once by
// Aggregate and not modified afterwards.
type BatchResult struct {
	Status  BatchStatus
	Results []JobResult
}

// Failure describes one job that did not succeed.
type Failure struct {
	Index    int
	Pair     pairing.Pair
	State    JobState
	ExitCode int
	Err      error
	Output   []string
}

// Aggregate folds per-job results into a BatchResult. The status is
// AllSucceeded only if every job succeeded; jobs that never ran count as
// failures.
func Aggregate(results []JobResult) BatchResult {
	copied := make([]JobResult, len(results))
	copy(copied, results)
	status := AllSucceeded
	for _, r := range copied {
		if r.State != StateSucceeded {
			status = PartialFailure
			break
		}
	}
	return BatchResult{Status: status, Results: copied}
}

// Failures lists every job that did not succeed, in input order.
func (b BatchResult) Failures() []Failure {
	var failures []Failure
	for _, r := range b.Results {
		if r.State == StateSucceeded {
			continue
		}
		failures = append(failures, Failure{
			Index:    r.Index,
			Pair:     r.Pair,
			State:    r.State,
			ExitCode: r.ExitCode,
			Err:      r.Err,
			Output:   r.Output,
		})
	}
	return failures
}

// Counts returns the number of succeeded, failed and never-launched jobs.
func (b BatchResult) Counts() (succeeded, failed, pending int) {
	for _, r := range b.Results {
		switch r.State {
		case StateSucceeded:
			succeeded++
		case StatePending:
			pending++
		default:
			failed++
		}
	}
	return succeeded, failed, pending
}
