package batch

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"addsubs/internal/history"
	"addsubs/internal/language"
	"addsubs/internal/mux"
	"addsubs/internal/pairing"
	"addsubs/internal/services"
)

type stubConfirmer struct {
	answer bool
	err    error
	seen   []pairing.Pair
	calls  int
}

func (s *stubConfirmer) Confirm(_ context.Context, pairs []pairing.Pair) (bool, error) {
	s.calls++
	s.seen = pairs
	return s.answer, s.err
}

type recordingRunner struct {
	mu         sync.Mutex
	cmds       []mux.Command
	exits      map[string]int
	launchErrs map[string]error
}

func (r *recordingRunner) Run(cmd mux.Command) (mux.ProcessResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = append(r.cmds, cmd)
	if err := r.launchErrs[cmd.Args[2]]; err != nil {
		return mux.ProcessResult{ExitCode: -1}, err
	}
	return mux.ProcessResult{ExitCode: r.exits[cmd.Args[2]]}, nil
}

type recordingDirs struct {
	calls []string
}

func (d *recordingDirs) EnsureDir(path string) (bool, error) {
	d.calls = append(d.calls, path)
	return true, nil
}

type stubLocker struct {
	err      error
	acquired []string
	released int
}

func (l *stubLocker) Acquire(path string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, path)
	return func() error {
		l.released++
		return nil
	}, nil
}

type stubRecorder struct {
	batches []history.Batch
	err     error
}

func (r *stubRecorder) Record(_ context.Context, batch history.Batch) error {
	r.batches = append(r.batches, batch)
	return r.err
}

type countingReader struct {
	inner pairing.DirReader
	calls int
}

func (c *countingReader) ReadDir(dir string) ([]fs.DirEntry, error) {
	c.calls++
	return c.inner.ReadDir(dir)
}

type harness struct {
	confirmer *stubConfirmer
	procs     *recordingRunner
	dirs      *recordingDirs
	locker    *stubLocker
	recorder  *stubRecorder
	reader    *countingReader
	commits   int
	runner    *Runner
}

func newHarness(t *testing.T, files ...string) *harness {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, name := range files {
		fsys["show/"+name] = &fstest.MapFile{Data: []byte("x")}
	}
	h := &harness{
		confirmer: &stubConfirmer{answer: true},
		procs:     &recordingRunner{exits: map[string]int{}, launchErrs: map[string]error{}},
		dirs:      &recordingDirs{},
		locker:    &stubLocker{},
		recorder:  &stubRecorder{},
		reader:    &countingReader{inner: pairing.FSDirReader{FS: fsys}},
	}
	dispatcher := mux.NewDispatcher(
		mux.Builder{Tool: "mkvmerge"},
		mux.WithProcessRunner(h.procs),
		mux.WithDirMaker(h.dirs),
		mux.WithConcurrency(2),
	)
	h.runner = NewRunner(language.Default(), h.confirmer, dispatcher,
		WithScanner(pairing.NewScanner(h.reader)),
		WithLocker(h.locker),
		WithRecorder(h.recorder),
		WithIDGenerator(func() string { return "batch-0001" }),
		WithCommitHook(func() error {
			h.commits++
			return nil
		}),
	)
	return h
}

func (h *harness) assertNoMutations(t *testing.T) {
	t.Helper()
	if len(h.dirs.calls) != 0 {
		t.Fatalf("output directory touched: %v", h.dirs.calls)
	}
	if h.commits != 0 {
		t.Fatalf("commit hooks ran %d times", h.commits)
	}
	if len(h.locker.acquired) != 0 {
		t.Fatalf("lock taken: %v", h.locker.acquired)
	}
	if len(h.procs.cmds) != 0 {
		t.Fatalf("processes launched: %v", h.procs.cmds)
	}
	if len(h.recorder.batches) != 0 {
		t.Fatalf("history recorded: %v", h.recorder.batches)
	}
}

func TestRunEndToEnd(t *testing.T) {
	h := newHarness(t, "b.mkv", "a.srt", "a.mkv", "b.srt", "readme.txt")

	report, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "jpn"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantPairs := []pairing.Pair{{Primary: "a.mkv", Secondary: "a.srt"}, {Primary: "b.mkv", Secondary: "b.srt"}}
	if !slices.Equal(report.Pairs, wantPairs) || !slices.Equal(h.confirmer.seen, wantPairs) {
		t.Fatalf("pairs = %v, confirmer saw %v", report.Pairs, h.confirmer.seen)
	}
	if report.LanguageName != "Japanese" || report.BatchID != "batch-0001" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Result.Status != mux.AllSucceeded {
		t.Fatalf("status = %s", report.Result.Status)
	}

	if len(h.procs.cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(h.procs.cmds))
	}
	lines := []string{h.procs.cmds[0].Line(), h.procs.cmds[1].Line()}
	slices.Sort(lines)
	want := []string{
		"mkvmerge -o output/a.mkv a.mkv --language 0:jpn --track-name 0:Japanese a.srt",
		"mkvmerge -o output/b.mkv b.mkv --language 0:jpn --track-name 0:Japanese b.srt",
	}
	if !slices.Equal(lines, want) {
		t.Fatalf("commands = %q, want %q", lines, want)
	}
	for _, cmd := range h.procs.cmds {
		if cmd.Dir != "show" {
			t.Fatalf("command must run in the scanned directory, got %q", cmd.Dir)
		}
	}

	if !slices.Equal(h.dirs.calls, []string{filepath.Join("show", "output")}) {
		t.Fatalf("unexpected directory creation: %v", h.dirs.calls)
	}
	if len(h.locker.acquired) != 1 || h.locker.acquired[0] != filepath.Join("show", "output", LockFileName) || h.locker.released != 1 {
		t.Fatalf("lock not taken and released once: %+v", h.locker)
	}
	if len(h.recorder.batches) != 1 || h.recorder.batches[0].Succeeded != 2 || len(h.recorder.batches[0].Jobs) != 2 {
		t.Fatalf("unexpected history: %+v", h.recorder.batches)
	}
}

func TestRunUnsupportedLanguageScansNothing(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")

	_, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "xyz"})
	if !errors.Is(err, services.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if services.ExitCode(err) != services.ExitUnsupportedLanguage {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	if h.reader.calls != 0 {
		t.Fatalf("directory scanned %d times", h.reader.calls)
	}
	if h.confirmer.calls != 0 {
		t.Fatal("confirmer must not be asked")
	}
	h.assertNoMutations(t)
}

func TestRunRejectionHasNoSideEffects(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.confirmer.answer = false

	_, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
	if !errors.Is(err, services.ErrUserCancelled) {
		t.Fatalf("expected ErrUserCancelled, got %v", err)
	}
	h.assertNoMutations(t)
}

func TestRunConfirmationReadError(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.confirmer.err = services.Wrap(services.ErrConfirmationRead, "confirm", "read answer", "", errors.New("EOF"))

	_, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
	if !errors.Is(err, services.ErrConfirmationRead) {
		t.Fatalf("expected ErrConfirmationRead, got %v", err)
	}
	h.assertNoMutations(t)
}

func TestRunValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  error
	}{
		{"no subtitles", []string{"a.mkv"}, services.ErrEmptySet},
		{"nothing at all", nil, services.ErrEmptySet},
		{"mismatch", []string{"a.mkv", "b.mkv", "a.srt"}, services.ErrCountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.files...)
			_, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if h.confirmer.calls != 0 {
				t.Fatal("confirmer must not be asked")
			}
			h.assertNoMutations(t)
		})
	}
}

func TestRunPartialFailure(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt", "b.mkv", "b.srt")
	h.procs.exits["b.mkv"] = 2

	report, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "spa"})
	if !errors.Is(err, services.ErrPartialFailure) {
		t.Fatalf("expected ErrPartialFailure, got %v", err)
	}
	if mux.AbortedBatch(err) {
		t.Fatal("partial failure must not abort the batch")
	}
	failures := report.Result.Failures()
	if len(failures) != 1 || failures[0].Pair.Primary != "b.mkv" || failures[0].ExitCode != 2 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	recorded := h.recorder.batches[0]
	if recorded.Status != "partial_failure" || recorded.Failed != 1 || recorded.Jobs[1].State != "failed" {
		t.Fatalf("unexpected history: %+v", recorded)
	}
}

func TestRunLockedDirectory(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.locker.err = services.Wrap(services.ErrBatchLocked, "lock", "acquire", "held", nil)

	_, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
	if !errors.Is(err, services.ErrBatchLocked) {
		t.Fatalf("expected ErrBatchLocked, got %v", err)
	}
	if len(h.procs.cmds) != 0 {
		t.Fatal("no process may run without the lock")
	}
}

func TestRunHistoryFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.recorder.err = errors.New("disk full")

	if _, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"}); err != nil {
		t.Fatalf("history failure must not fail the batch, got %v", err)
	}
}

func TestRunNormalizesLanguageCode(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")

	report, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: " JPN "})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.LanguageCode != "jpn" || !strings.Contains(h.procs.cmds[0].Line(), "--language 0:jpn") {
		t.Fatalf("language code not normalised: %+v", report)
	}
}

func TestRunLaunchFailureRecordsAbortedBatch(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.procs.launchErrs["a.mkv"] = services.Wrap(services.ErrJobLaunch, "mux", "start", "mkvmerge", errors.New("not found"))

	report, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
	if !errors.Is(err, services.ErrJobLaunch) || !mux.AbortedBatch(err) {
		t.Fatalf("expected an aborting launch error, got %v", err)
	}
	if report.BatchID == "" || len(report.Result.Results) != 1 {
		t.Fatalf("report should be populated after dispatch: %+v", report)
	}
	if len(h.recorder.batches) != 1 {
		t.Fatalf("expected one history row, got %d", len(h.recorder.batches))
	}
	recorded := h.recorder.batches[0]
	if recorded.Status != StatusAborted {
		t.Fatalf("history status = %q, want %q", recorded.Status, StatusAborted)
	}
	if !strings.Contains(recorded.ErrorMessage, "not found") {
		t.Fatalf("history error = %q", recorded.ErrorMessage)
	}
}

func TestRunCancelledRecordsInterruptedBatch(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.Run(ctx, Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "eng"})
	if !errors.Is(err, context.Canceled) || mux.AbortedBatch(err) {
		t.Fatalf("expected an interrupted dispatch, got %v", err)
	}
	if len(h.procs.cmds) != 0 {
		t.Fatalf("no job should start after cancellation: %v", h.procs.cmds)
	}
	if got := h.recorder.batches[0].Status; got != StatusInterrupted {
		t.Fatalf("history status = %q, want %q", got, StatusInterrupted)
	}
}

func TestRunCommitHookRunsOnceAfterAcceptance(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt", "b.mkv", "b.srt")

	if _, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "jpn"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.commits != 1 {
		t.Fatalf("commit hook ran %d times, want 1", h.commits)
	}
}

func TestRunCommitHookErrorDoesNotStopBatch(t *testing.T) {
	h := newHarness(t, "a.mkv", "a.srt")
	h.runner = NewRunner(language.Default(), h.confirmer, mux.NewDispatcher(
		mux.Builder{Tool: "mkvmerge"},
		mux.WithProcessRunner(h.procs),
		mux.WithDirMaker(h.dirs),
	),
		WithScanner(pairing.NewScanner(h.reader)),
		WithLocker(h.locker),
		WithCommitHook(func() error { return errors.New("log directory read-only") }),
	)

	if _, err := h.runner.Run(context.Background(), Request{Dir: "show", PrimaryToken: "mkv", SecondaryToken: "srt", LanguageCode: "jpn"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.procs.cmds) != 1 {
		t.Fatalf("expected the job to run, got %d commands", len(h.procs.cmds))
	}
}
