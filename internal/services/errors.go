package services

import (
	"errors"
	"fmt"
	"strings"
)

// Markers for every failure kind a batch can end with. Wrap tags an error with
// one of these so callers classify it with errors.Is.
var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrDirectory           = errors.New("directory error")
	ErrEmptySet            = errors.New("no matching files")
	ErrCountMismatch       = errors.New("file count mismatch")
	ErrConfirmationRead    = errors.New("confirmation read error")
	ErrUserCancelled       = errors.New("user cancelled")
	ErrOutputDirectory     = errors.New("output directory error")
	ErrCommandBuild        = errors.New("command build error")
	ErrUsage               = errors.New("usage error")
	ErrJobLaunch           = errors.New("job launch error")
	ErrJobWait             = errors.New("job wait error")
	ErrPartialFailure      = errors.New("one or more jobs failed")
	ErrConfiguration       = errors.New("configuration error")
	ErrBatchLocked         = errors.New("batch locked")
)

// Process exit codes. The numbering of the first eleven is stable; scripts
// depend on it.
const (
	ExitOK                  = 0
	ExitUnsupportedLanguage = 1
	ExitDirectory           = 2
	ExitEmptySet            = 3
	ExitCountMismatch       = 4
	ExitConfirmationRead    = 5
	ExitUserCancelled       = 6
	ExitOutputDirectory     = 7
	ExitCommandBuild        = 8
	ExitUsage               = 9
	ExitJobLaunch           = 10
	ExitJobWait             = 11
	ExitPartialFailure      = 12
	ExitConfiguration       = 13
	ExitBatchLocked         = 14
	ExitUnknown             = 15
)

var exitCodes = []struct {
	marker error
	code   int
}{
	{ErrUnsupportedLanguage, ExitUnsupportedLanguage},
	{ErrDirectory, ExitDirectory},
	{ErrEmptySet, ExitEmptySet},
	{ErrCountMismatch, ExitCountMismatch},
	{ErrConfirmationRead, ExitConfirmationRead},
	{ErrUserCancelled, ExitUserCancelled},
	{ErrOutputDirectory, ExitOutputDirectory},
	{ErrCommandBuild, ExitCommandBuild},
	{ErrUsage, ExitUsage},
	{ErrJobLaunch, ExitJobLaunch},
	{ErrJobWait, ExitJobWait},
	{ErrPartialFailure, ExitPartialFailure},
	{ErrConfiguration, ExitConfiguration},
	{ErrBatchLocked, ExitBatchLocked},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err == nil {
			return errors.New(detail)
		}
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit code for its failure kind.
// A nil error maps to ExitOK and an untagged error to ExitUnknown.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for _, entry := range exitCodes {
		if errors.Is(err, entry.marker) {
			return entry.code
		}
	}
	return ExitUnknown
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "batch failure"
	}
	return strings.Join(parts, ": ")
}
