package mux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"addsubs/internal/fileutil"
	"addsubs/internal/logging"
	"addsubs/internal/pairing"
	"addsubs/internal/services"
)

// JobState is the lifecycle position of one job.
type JobState int

const (
	StatePending JobState = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// JobResult is the outcome of one job, stored at the job's input index.
type JobResult struct {
	Index    int
	Pair     pairing.Pair
	State    JobState
	ExitCode int
	Err      error
	Duration time.Duration
	Output   []string
	// Stage is the last step attempted: "sync" or "mux".
	Stage string
}

// DirMaker creates the output directory.
type DirMaker interface {
	EnsureDir(path string) (created bool, err error)
}

type osDirMaker struct{}

func (osDirMaker) EnsureDir(path string) (bool, error) {
	return fileutil.EnsureDir(path)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProcessRunner injects a custom runner (primarily for tests).
func WithProcessRunner(runner ProcessRunner) Option {
	return func(d *Dispatcher) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// WithDirMaker injects a custom directory creator (primarily for tests).
func WithDirMaker(maker DirMaker) Option {
	return func(d *Dispatcher) {
		if maker != nil {
			d.dirs = maker
		}
	}
}

// WithConcurrency bounds the number of jobs running at once. Values below
// one fall back to runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		d.workers = n
	}
}

// WithLogger sets the dispatcher's logging destination.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.NewComponentLogger(logger, "dispatcher")
	}
}

// Dispatcher runs the jobs of one batch.
type Dispatcher struct {
	builder Builder
	runner  ProcessRunner
	dirs    DirMaker
	workers int
	logger  *slog.Logger
}

// NewDispatcher constructs a dispatcher that renders commands with builder.
func NewDispatcher(builder Builder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		builder: builder,
		runner:  ExecRunner{},
		dirs:    osDirMaker{},
		logger:  logging.NewComponentLogger(nil, "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = max(runtime.NumCPU(), 1)
	}
	return d
}

// Workers reports the pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Prepare builds every job, then creates the output directory. A build
// failure returns before the directory is touched.
func (d *Dispatcher) Prepare(target Target, pairs []pairing.Pair) ([]Job, error) {
	jobs, err := d.builder.Build(target, pairs)
	if err != nil {
		return nil, err
	}
	path := target.OutputPath()
	created, err := d.dirs.EnsureDir(path)
	if err != nil {
		return nil, services.Wrap(services.ErrOutputDirectory, "prepare", "create output directory", path, err)
	}
	d.logger.Debug("output directory ready",
		logging.String("path", path),
		logging.Bool("created", created),
	)
	return jobs, nil
}

// Dispatch is Prepare followed by Run.
func (d *Dispatcher) Dispatch(ctx context.Context, target Target, pairs []pairing.Pair) ([]JobResult, error) {
	jobs, err := d.Prepare(target, pairs)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, jobs)
}

// Run executes jobs on the worker pool and blocks until every launched job
// has finished. The returned slice always has one entry per job in input
// order; jobs never launched stay StatePending. The error is the first
// launch or wait failure, or the context error if ctx ended early.
func (d *Dispatcher) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))
	for i, job := range jobs {
		results[i] = JobResult{Index: i, Pair: job.Pair, State: StatePending}
	}
	if len(jobs) == 0 {
		return results, nil
	}

	var (
		fatalOnce sync.Once
		fatalErr  error
		stop      = make(chan struct{})
		queue     = make(chan int)
		wg        sync.WaitGroup
	)
	abort := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			close(stop)
		})
	}

	workers := min(d.workers, len(jobs))
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for idx := range queue {
				if halted(ctx, stop) {
					continue
				}
				result, err := d.runJob(ctx, jobs[idx])
				results[idx] = result
				if err != nil {
					abort(err)
				}
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case <-stop:
			break feed
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	if fatalErr != nil {
		return results, fatalErr
	}
	if err := ctx.Err(); err != nil && hasPending(results) {
		return results, fmt.Errorf("dispatch interrupted: %w", err)
	}
	return results, nil
}

func halted(ctx context.Context, stop <-chan struct{}) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

func hasPending(results []JobResult) bool {
	for _, r := range results {
		if r.State == StatePending {
			return true
		}
	}
	return false
}

type step struct {
	stage string
	cmd   Command
}

func (d *Dispatcher) runJob(ctx context.Context, job Job) (JobResult, error) {
	logger := logging.WithContext(services.WithJobIndex(ctx, job.Index), d.logger)
	result := JobResult{Index: job.Index, Pair: job.Pair, State: StateRunning}
	start := time.Now()

	steps := make([]step, 0, 2)
	if job.Sync != nil {
		steps = append(steps, step{stage: "sync", cmd: *job.Sync})
	}
	steps = append(steps, step{stage: "mux", cmd: job.Mux})

	for _, st := range steps {
		logger.Debug("starting process",
			logging.String("stage", st.stage),
			logging.String("command", st.cmd.String()),
		)
		proc, err := d.runner.Run(st.cmd)
		result.Duration = time.Since(start)
		result.ExitCode = proc.ExitCode
		result.Output = proc.Output
		result.Stage = st.stage
		if err != nil {
			result.State = StateFailed
			result.Err = err
			logging.ErrorWithContext(logger, "process could not be run", "job_process_error",
				logging.String("stage", st.stage),
				logging.String("primary", job.Pair.Primary),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that "+st.cmd.Name+" is installed and executable"),
			)
			return result, err
		}
		if proc.ExitCode != 0 {
			result.State = StateFailed
			result.Err = fmt.Errorf("%s exited with status %d", st.cmd.Name, proc.ExitCode)
			logging.WarnWithContext(logger, "job failed", "job_failed",
				logging.String("stage", st.stage),
				logging.String("primary", job.Pair.Primary),
				logging.String("secondary", job.Pair.Secondary),
				logging.Int("exit_code", proc.ExitCode),
				logging.String(logging.FieldErrorHint, "see the tool output in the batch summary"),
			)
			return result, nil
		}
	}

	result.State = StateSucceeded
	result.Err = nil
	logger.Info("job complete",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("primary", job.Pair.Primary),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// AbortedBatch reports whether err from Run is a launch or wait failure that
// stopped further jobs from starting.
func AbortedBatch(err error) bool {
	return errors.Is(err, services.ErrJobLaunch) || errors.Is(err, services.ErrJobWait)
}
