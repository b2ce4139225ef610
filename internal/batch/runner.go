package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"addsubs/internal/confirm"
	"addsubs/internal/history"
	"addsubs/internal/language"
	"addsubs/internal/logging"
	"addsubs/internal/mux"
	"addsubs/internal/pairing"
	"addsubs/internal/services"
)

// Request names the directory, the two file tokens and the subtitle language.
type Request struct {
	Dir            string
	PrimaryToken   string
	SecondaryToken string
	LanguageCode   string
}

// Report describes a batch that reached the dispatcher.
type Report struct {
	BatchID      string
	Dir          string
	OutputDir    string
	LanguageCode string
	LanguageName string
	Pairs        []pairing.Pair
	Result       mux.BatchResult
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Resolver maps a language code to its track name.
type Resolver interface {
	Resolve(code string) (string, bool)
}

// Recorder persists finished batches.
type Recorder interface {
	Record(ctx context.Context, batch history.Batch) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithScanner overrides the host filesystem scanner.
func WithScanner(scanner *pairing.Scanner) Option {
	return func(r *Runner) {
		if scanner != nil {
			r.scanner = scanner
		}
	}
}

// WithLocker overrides the flock-based batch lock.
func WithLocker(locker Locker) Option {
	return func(r *Runner) {
		if locker != nil {
			r.locker = locker
		}
	}
}

// WithRecorder enables history recording.
func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// WithLogger sets the runner's logging destination.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "batch")
	}
}

// WithOutputDirName sets the output directory created inside the scanned one.
func WithOutputDirName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.outputDirName = name
		}
	}
}

// WithTool names the mux tool in history records.
func WithTool(tool string) Option {
	return func(r *Runner) {
		r.tool = tool
	}
}

// WithCommitHook registers fn to run once the pairs are accepted, before the
// output directory is created. A hook error is logged and the batch continues.
func WithCommitHook(fn func() error) Option {
	return func(r *Runner) {
		if fn != nil {
			r.commitHooks = append(r.commitHooks, fn)
		}
	}
}

// WithIDGenerator overrides uuid batch IDs (primarily for tests).
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Runner executes batches.
type Runner struct {
	resolver      Resolver
	confirmer     confirm.Confirmer
	dispatcher    *mux.Dispatcher
	scanner       *pairing.Scanner
	locker        Locker
	recorder      Recorder
	logger        *slog.Logger
	outputDirName string
	tool          string
	newID         func() string
	now           func() time.Time
	commitHooks   []func() error
}

// NewRunner wires a runner. The resolver is the immutable language table.
func NewRunner(resolver Resolver, confirmer confirm.Confirmer, dispatcher *mux.Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		resolver:      resolver,
		confirmer:     confirmer,
		dispatcher:    dispatcher,
		scanner:       pairing.NewScanner(nil),
		locker:        FileLocker{},
		logger:        logging.NewComponentLogger(nil, "batch"),
		outputDirName: "output",
		tool:          "mkvmerge",
		newID:         uuid.NewString,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one batch. The Report is populated once jobs have been
// dispatched; errors before that point return a zero Report. A batch whose
// jobs all ran but some failed returns the Report and an ErrPartialFailure.
func (r *Runner) Run(ctx context.Context, req Request) (Report, error) {
	code := language.Normalize(req.LanguageCode)
	name, ok := r.resolver.Resolve(code)
	if !ok {
		return Report{}, services.Wrap(services.ErrUnsupportedLanguage, "language", "resolve", fmt.Sprintf("%q is not a known language code", req.LanguageCode), nil)
	}

	id := r.newID()
	ctx = services.WithBatchID(ctx, id)
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	primary, secondary, err := r.scanner.Scan(req.Dir, req.PrimaryToken, req.SecondaryToken)
	if err != nil {
		return Report{}, err
	}
	pairs, err := pairing.Validate(primary, secondary)
	if err != nil {
		return Report{}, err
	}
	logger.Debug("pairs computed",
		logging.Int("pairs", len(pairs)),
		logging.String("primary_token", req.PrimaryToken),
		logging.String("secondary_token", req.SecondaryToken),
	)

	accepted, err := r.confirmer.Confirm(ctx, pairs)
	if err != nil {
		return Report{}, err
	}
	if !accepted {
		return Report{}, services.Wrap(services.ErrUserCancelled, "confirm", "", "pairs rejected", nil)
	}
	for _, hook := range r.commitHooks {
		if err := hook(); err != nil {
			logging.WarnWithContext(logger, "batch commit hook failed", "commit_hook_failed",
				logging.Error(err),
			)
		}
	}

	target := mux.Target{
		Dir:          req.Dir,
		OutputDir:    r.outputDirName,
		LanguageCode: code,
		LanguageName: name,
	}
	jobs, err := r.dispatcher.Prepare(target, pairs)
	if err != nil {
		return Report{}, err
	}

	release, err := r.locker.Acquire(filepath.Join(target.OutputPath(), LockFileName))
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if relErr := release(); relErr != nil {
			logging.WarnWithContext(logger, "batch lock not released cleanly", "lock_release_failed",
				logging.Error(relErr),
				logging.String(logging.FieldErrorHint, "remove "+LockFileName+" from the output directory"),
			)
		}
	}()

	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.String("dir", req.Dir),
		logging.String("language", code),
		logging.Int("jobs", len(jobs)),
		logging.Int("workers", r.dispatcher.Workers()),
	)

	results, runErr := r.dispatcher.Run(ctx, jobs)
	report := Report{
		BatchID:      id,
		Dir:          req.Dir,
		OutputDir:    target.OutputPath(),
		LanguageCode: code,
		LanguageName: name,
		Pairs:        pairs,
		Result:       mux.Aggregate(results),
		StartedAt:    started,
		FinishedAt:   r.now(),
	}

	r.record(ctx, logger, report, runErr)

	succeeded, failed, pending := report.Result.Counts()
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_finished"),
		logging.String("status", report.Result.Status.String()),
		logging.Int("succeeded", succeeded),
		logging.Int("failed", failed),
		logging.Int("pending", pending),
		logging.Duration("duration", report.FinishedAt.Sub(started)),
	)

	if runErr != nil {
		if mux.AbortedBatch(runErr) {
			logging.ErrorWithContext(logger, "batch aborted", "batch_aborted",
				logging.Error(runErr),
				logging.Int("not_started", pending),
				logging.String(logging.FieldErrorHint, "check that the mux tool can be launched"),
			)
		}
		return report, runErr
	}
	if report.Result.Status != mux.AllSucceeded {
		return report, services.Wrap(services.ErrPartialFailure, "dispatch", "", fmt.Sprintf("%d of %d jobs failed", failed+pending, len(jobs)), nil)
	}
	return report, nil
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	if r.recorder == nil {
		return
	}
	// A cancelled batch still gets its row.
	if err := r.recorder.Record(context.WithoutCancel(ctx), toHistory(report, r.tool, runErr)); err != nil {
		logging.WarnWithContext(logger, "batch history not recorded", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path in the config or run with --no-history"),
		)
	}
}

// History statuses for batches that ended before every job ran. Completed
// batches use mux.BatchStatus.
const (
	StatusAborted     = "aborted"
	StatusInterrupted = "interrupted"
)

func toHistory(report Report, tool string, runErr error) history.Batch {
	succeeded, failed, pending := report.Result.Counts()
	batch := history.Batch{
		ID:           report.BatchID,
		Directory:    report.Dir,
		LanguageCode: report.LanguageCode,
		LanguageName: report.LanguageName,
		Tool:         tool,
		Status:       report.Result.Status.String(),
		Total:        len(report.Result.Results),
		Succeeded:    succeeded,
		Failed:       failed,
		Pending:      pending,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Jobs:         make([]history.Job, 0, len(report.Result.Results)),
	}
	switch {
	case mux.AbortedBatch(runErr):
		batch.Status = StatusAborted
	case runErr != nil:
		batch.Status = StatusInterrupted
	}
	if runErr != nil {
		batch.ErrorMessage = runErr.Error()
	}
	for _, res := range report.Result.Results {
		job := history.Job{
			Index:     res.Index,
			Primary:   res.Pair.Primary,
			Secondary: res.Pair.Secondary,
			State:     res.State.String(),
			ExitCode:  res.ExitCode,
			Duration:  res.Duration,
		}
		if res.Err != nil {
			job.ErrorMessage = res.Err.Error()
		}
		batch.Jobs = append(batch.Jobs, job)
	}
	return batch
}
