package orchestrator

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for run failures. All of them terminate the run at
// the stage that raised them; they differ only in diagnostics.
var (
	// ErrConfiguration marks a problem detected before any stage runs.
	ErrConfiguration = errors.New("configuration error")

	// ErrSpawn marks a stage whose external program could not be started
	// at all (missing executable, permission denied).
	ErrSpawn = errors.New("spawn error")

	// ErrStageExecution marks a stage whose external program ran but
	// exited with a nonzero status.
	ErrStageExecution = errors.New("stage execution error")

	// ErrCanceled marks a run cut short by context cancellation or an
	// overall deadline.
	ErrCanceled = errors.New("run canceled")
)

// StageError wraps a stage failure with its position in the pipeline.
type StageError struct {
	Index int    // 1-based stage index
	Name  string
	Kind  error // one of the sentinels above
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v: %v", e.Index, e.Name, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Kind
}
