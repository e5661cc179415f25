package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/partrita/RFantibody/internal/config"
	"github.com/partrita/RFantibody/internal/db"
	"github.com/partrita/RFantibody/internal/orchestrator"
	"github.com/partrita/RFantibody/internal/run"
	"github.com/partrita/RFantibody/internal/stage"
)

// ExitError carries a specific process exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error from Execute to a process exit code.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

var runFlags struct {
	configPath    string
	name          string
	framework     string
	target        string
	hotspots      string
	loops         string
	loopFilter    string
	numDesigns    int
	seqsPerStruct int
	outputDir     string
	timeout       time.Duration
	dryRun        bool
	noDB          bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full three-stage design pipeline for one design",
	Long: `Run RFdiffusion, ProteinMPNN, and RF2 in order for a single design.
The pipeline stops at the first failing stage; outputs of completed
stages are retained.

Exit codes: 0 on success, 1 for configuration errors, and k+1 when
stage k (1-based) fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "config: %s\n", e.Error())
			}
			return &ExitError{Code: 1, Err: fmt.Errorf("invalid configuration (%d errors)", len(errs))}
		}
		if err := cfg.Resolve(); err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		stages, err := stage.Build(cfg)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		if runFlags.dryRun {
			for _, st := range stages {
				cmd.Printf("[%d] %s\n    %s\n", st.Index, st.Name, st.Command())
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if runFlags.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, runFlags.timeout)
			defer cancel()
		}

		orch := orchestrator.New(&orchestrator.ExecRunner{})
		orch.SetStore(run.NewStore(cfg.OutputDir))
		orch.SetProgress(os.Stderr)

		if !runFlags.noDB {
			if events := openEventDB(); events != nil {
				defer events.Close()
				orch.SetEventDB(events)
			}
		}

		fmt.Fprintf(os.Stderr, "running pipeline for design %q -> %s\n", cfg.Design.Name, cfg.OutputDir)
		outcome, err := orch.Run(ctx, cfg, stages)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		if outcome.Status == orchestrator.StatusFailed {
			failed := outcome.Stages[len(outcome.Stages)-1]
			return &ExitError{
				Code: outcome.FailedStage + 1,
				Err:  fmt.Errorf("pipeline failed: %v", failed.Err),
			}
		}

		fmt.Fprintf(os.Stderr, "pipeline completed: %d stages, run %s\n", len(outcome.Stages), outcome.RunID)
		return nil
	},
}

// loadRunConfig loads the config file (explicit, discovered, or empty
// defaults) and applies flag overrides on top.
func loadRunConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case runFlags.configPath != "":
		cfg, err = config.Load(runFlags.configPath)
		if err != nil {
			return nil, err
		}
	default:
		cfg, err = config.LoadDefault()
		if err != nil {
			// No config file: flags must carry the full design.
			cfg = config.Default()
		}
	}

	if runFlags.name != "" {
		cfg.Design.Name = runFlags.name
	}
	if runFlags.framework != "" {
		cfg.Design.FrameworkPDB = runFlags.framework
	}
	if runFlags.target != "" {
		cfg.Design.TargetPDB = runFlags.target
	}
	if runFlags.hotspots != "" {
		cfg.Design.Hotspots = runFlags.hotspots
	}
	if runFlags.loops != "" {
		cfg.Design.DesignLoops = runFlags.loops
	}
	if runFlags.loopFilter != "" {
		cfg.Design.LoopFilter = runFlags.loopFilter
	}
	if runFlags.numDesigns > 0 {
		cfg.Design.NumDesigns = runFlags.numDesigns
	}
	if runFlags.seqsPerStruct > 0 {
		cfg.Design.SeqsPerStruct = runFlags.seqsPerStruct
	}
	if runFlags.outputDir != "" {
		cfg.OutputDir = runFlags.outputDir
	}
	return cfg, nil
}

// openEventDB opens the shared event log, best-effort.
func openEventDB() *db.DB {
	path, err := db.DefaultDBPath()
	if err != nil {
		return nil
	}
	events, err := db.Open(path)
	if err != nil {
		return nil
	}
	if err := events.Migrate(); err != nil {
		events.Close()
		return nil
	}
	return events
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", "", "path to pipeline config YAML")
	f.StringVar(&runFlags.name, "name", "", "design name (overrides config)")
	f.StringVar(&runFlags.framework, "framework", "", "antibody framework PDB in HLT format")
	f.StringVar(&runFlags.target, "target", "", "target/antigen PDB")
	f.StringVar(&runFlags.hotspots, "hotspots", "", `hotspot residues, e.g. "T305,T456"`)
	f.StringVar(&runFlags.loops, "loops", "", `design loops, e.g. "H1:7,H2:6,H3:5-13"`)
	f.StringVar(&runFlags.loopFilter, "loop-filter", "", `loops ProteinMPNN may redesign, e.g. "H1,H2,H3"`)
	f.IntVar(&runFlags.numDesigns, "num-designs", 0, "number of backbones to generate")
	f.IntVar(&runFlags.seqsPerStruct, "seqs-per-struct", 0, "sequences to design per backbone")
	f.StringVarP(&runFlags.outputDir, "output", "o", "", "base output directory")
	f.DurationVar(&runFlags.timeout, "timeout", 0, "overall pipeline deadline (0 = per-stage timeouts only)")
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "print resolved stage commands without executing")
	f.BoolVar(&runFlags.noDB, "no-db", false, "skip the shared event log")
}
