// Package orchestrator runs the three-stage antibody design pipeline:
// structure diffusion, sequence design, structure prediction. Stages run
// strictly one at a time and the first failure terminates the run; outputs
// of completed stages are always retained.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/partrita/RFantibody/internal/config"
	"github.com/partrita/RFantibody/internal/db"
	"github.com/partrita/RFantibody/internal/run"
	"github.com/partrita/RFantibody/internal/stage"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StageResult captures the outcome of one executed stage.
type StageResult struct {
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	StdoutLog string        `json:"stdout_log,omitempty"`
	StderrLog string        `json:"stderr_log,omitempty"`
	Err       *StageError   `json:"-"`
}

// Outcome is the terminal result of a pipeline run. Stages holds one entry
// per executed stage, in order; when FailedStage is k (1-based), it holds
// exactly k entries and later stages were never started.
type Outcome struct {
	RunID       string        `json:"run_id"`
	Status      Status        `json:"status"`
	FailedStage int           `json:"failed_stage,omitempty"` // 1-based, 0 on success
	Stages      []StageResult `json:"stages"`
}

// Orchestrator executes an ordered stage list against one immutable config.
type Orchestrator struct {
	cmd      CommandRunner
	store    *run.Store // nil = no on-disk run state
	events   *db.DB     // nil = no event log
	progress io.Writer  // nil = silent
}

// New creates an Orchestrator using the given command runner.
func New(cmd CommandRunner) *Orchestrator {
	return &Orchestrator{cmd: cmd}
}

// SetStore attaches an on-disk run store for state and captured logs.
func (o *Orchestrator) SetStore(s *run.Store) {
	o.store = s
}

// SetEventDB attaches a best-effort event log. Event log failures never
// fail a pipeline.
func (o *Orchestrator) SetEventDB(d *db.DB) {
	o.events = d
}

// SetProgress sets a writer for live per-stage progress lines.
func (o *Orchestrator) SetProgress(w io.Writer) {
	o.progress = w
}

// logf prints a progress line if a progress writer is configured.
func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.progress != nil {
		fmt.Fprintf(o.progress, "  → "+format+"\n", args...)
	}
}

// Run executes the stages in order, fail-fast. It returns an error only for
// problems detected before any stage starts; stage failures are reported
// through the Outcome.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.Config, stages []stage.Stage) (*Outcome, error) {
	if err := o.preflight(cfg, stages); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	outcome := &Outcome{RunID: runID, Status: StatusSucceeded}

	if o.store != nil {
		if _, err := o.store.Create(runID, cfg.Design.Name); err != nil {
			return nil, fmt.Errorf("%w: init run store: %v", ErrConfiguration, err)
		}
	}
	if o.events != nil {
		_ = o.events.CreateRun(runID, cfg.Design.Name)
	}

	for _, st := range stages {
		o.logf("stage %d/%d (%s): starting", st.Index, len(stages), st.Name)
		o.setCurrentStage(st.Name)
		o.logStageEvent(runID, st.Index, st.Name, "stage_started", 0)

		res := o.runStage(ctx, st)
		outcome.Stages = append(outcome.Stages, res)
		o.recordStage(res)

		if res.Err != nil {
			o.logf("stage %d (%s): FAILED: %v", st.Index, st.Name, res.Err)
			o.logStageEvent(runID, st.Index, st.Name, "stage_failed", res.ExitCode)
			outcome.Status = StatusFailed
			outcome.FailedStage = st.Index
			o.finish(runID, outcome)
			return outcome, nil
		}

		o.logf("stage %d (%s): succeeded in %s", st.Index, st.Name, res.Duration.Round(time.Second))
		o.logStageEvent(runID, st.Index, st.Name, "stage_succeeded", 0)
	}

	o.finish(runID, outcome)
	return outcome, nil
}

// preflight validates everything that must hold before stage 1 starts.
// Input directories for later stages are produced by earlier stages and are
// therefore not checked here.
func (o *Orchestrator) preflight(cfg *config.Config, stages []stage.Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: empty stage list", ErrConfiguration)
	}
	if !cfg.Resolved() {
		return fmt.Errorf("%w: config paths not resolved", ErrConfiguration)
	}
	for name, path := range map[string]string{
		"framework_pdb": cfg.Design.FrameworkPDB,
		"target_pdb":    cfg.Design.TargetPDB,
	} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrConfiguration, name, path, err)
		}
	}
	return nil
}

// runStage executes one stage and classifies its outcome. The exit code is
// captured synchronously from the exact child process that was started for
// this stage.
func (o *Orchestrator) runStage(ctx context.Context, st stage.Stage) StageResult {
	res := StageResult{Index: st.Index, Name: st.Name, Status: StatusSucceeded}

	stageCtx := ctx
	var cancel context.CancelFunc
	if st.Timeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, st.Timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, exitCode, err := o.cmd.Run(stageCtx, st.Program, st.Args)
	res.Duration = time.Since(start)
	res.ExitCode = exitCode

	if o.store != nil {
		outLog, errLog, saveErr := o.store.SaveStageLogs(st.Index, st.Name, stdout, stderr)
		if saveErr == nil {
			res.StdoutLog = outLog
			res.StderrLog = errLog
		}
	}

	switch {
	case stageCtx.Err() != nil:
		res.Status = StatusFailed
		res.Err = &StageError{Index: st.Index, Name: st.Name, Kind: ErrCanceled, Err: stageCtx.Err()}
	case err != nil:
		res.Status = StatusFailed
		res.Err = &StageError{Index: st.Index, Name: st.Name, Kind: ErrSpawn, Err: err}
	case exitCode != 0:
		res.Status = StatusFailed
		res.Err = &StageError{
			Index: st.Index,
			Name:  st.Name,
			Kind:  ErrStageExecution,
			Err:   fmt.Errorf("exit code %d", exitCode),
		}
	}
	return res
}

// recordStage appends the stage result to the persisted run state.
func (o *Orchestrator) recordStage(res StageResult) {
	if o.store == nil {
		return
	}
	rec := run.StageRecord{
		Index:     res.Index,
		Name:      res.Name,
		Status:    string(res.Status),
		ExitCode:  res.ExitCode,
		Duration:  res.Duration.String(),
		StdoutLog: res.StdoutLog,
		StderrLog: res.StderrLog,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	_ = o.store.Update(func(st *run.State) {
		st.Status = "in_progress"
		st.Stages = append(st.Stages, rec)
	})
}

// setCurrentStage updates the persisted current-stage marker.
func (o *Orchestrator) setCurrentStage(name string) {
	if o.store == nil {
		return
	}
	_ = o.store.Update(func(st *run.State) {
		st.Status = "in_progress"
		st.CurrentStage = name
	})
}

// finish moves the persisted state and the event DB row to their terminal
// status.
func (o *Orchestrator) finish(runID string, outcome *Outcome) {
	status := "completed"
	if outcome.Status == StatusFailed {
		status = "failed"
	}
	if o.store != nil {
		_ = o.store.Update(func(st *run.State) {
			st.Status = status
			st.CurrentStage = ""
		})
	}
	if o.events != nil {
		_ = o.events.FinishRun(runID, status)
	}
}

// logStageEvent writes to the event DB, best-effort.
func (o *Orchestrator) logStageEvent(runID string, stageIndex int, stageName string, event string, exitCode int) {
	if o.events == nil {
		return
	}
	_ = o.events.LogStageEvent(runID, stageIndex, stageName, event, exitCode)
}
