// Package batch runs the design pipeline over a directory of per-design
// configs. Designs are independent of each other, so they may run with
// bounded parallelism; the three stages within each design stay strictly
// sequential.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/partrita/RFantibody/internal/config"
	"github.com/partrita/RFantibody/internal/db"
	"github.com/partrita/RFantibody/internal/orchestrator"
	"github.com/partrita/RFantibody/internal/run"
	"github.com/partrita/RFantibody/internal/stage"
)

// Result is the outcome of one design's pipeline within a batch.
type Result struct {
	ConfigPath string
	Design     string
	Outcome    *orchestrator.Outcome // nil when the config never ran
	Err        error
}

// Failed reports whether this design's pipeline did not complete.
func (r Result) Failed() bool {
	return r.Err != nil || (r.Outcome != nil && r.Outcome.Status == orchestrator.StatusFailed)
}

// Runner executes batches of design configs.
type Runner struct {
	cmd      orchestrator.CommandRunner
	events   *db.DB
	progress io.Writer
	parallel int
}

// NewRunner creates a batch Runner. parallel values below 1 are treated
// as 1.
func NewRunner(cmd orchestrator.CommandRunner, parallel int) *Runner {
	if parallel < 1 {
		parallel = 1
	}
	return &Runner{cmd: cmd, parallel: parallel}
}

// SetEventDB attaches a best-effort event log shared by all designs.
func (r *Runner) SetEventDB(d *db.DB) {
	r.events = d
}

// SetProgress sets the writer for progress output.
func (r *Runner) SetProgress(w io.Writer) {
	r.progress = w
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.progress != nil {
		fmt.Fprintf(r.progress, format+"\n", args...)
	}
}

// DiscoverConfigs lists the YAML config files in dir, sorted by name.
func DiscoverConfigs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// RunDir runs the pipeline for every config in dir. One failing design does
// not stop the others; only context cancellation aborts the batch early.
// The returned results are ordered like the discovered configs.
func (r *Runner) RunDir(ctx context.Context, dir string) ([]Result, error) {
	paths, err := DiscoverConfigs(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no config files (*.yaml) found in %s", dir)
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = r.runOne(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// runOne loads, validates, and runs a single design config.
func (r *Runner) runOne(ctx context.Context, path string) Result {
	res := Result{ConfigPath: path}

	cfg, err := config.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Design = cfg.Design.Name

	if errs := config.Validate(cfg); len(errs) > 0 {
		res.Err = fmt.Errorf("invalid config %s: %s", path, errs[0].Error())
		return res
	}
	if err := cfg.Resolve(); err != nil {
		res.Err = err
		return res
	}

	stages, err := stage.Build(cfg)
	if err != nil {
		res.Err = err
		return res
	}

	r.logf("design %s: starting (%s)", cfg.Design.Name, path)

	orch := orchestrator.New(r.cmd)
	orch.SetStore(run.NewStore(cfg.OutputDir))
	if r.events != nil {
		orch.SetEventDB(r.events)
	}
	if r.progress != nil {
		orch.SetProgress(r.progress)
	}

	outcome, err := orch.Run(ctx, cfg, stages)
	if err != nil {
		res.Err = err
		return res
	}
	res.Outcome = outcome

	if outcome.Status == orchestrator.StatusFailed {
		r.logf("design %s: FAILED at stage %d", cfg.Design.Name, outcome.FailedStage)
	} else {
		r.logf("design %s: completed", cfg.Design.Name)
	}
	return res
}
