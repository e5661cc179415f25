package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partrita/RFantibody/internal/batch"
	"github.com/partrita/RFantibody/internal/orchestrator"
)

var batchFlags struct {
	parallel int
	noDB     bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <config-dir>",
	Short: "Run the pipeline for every design config in a directory",
	Long: `Run the full pipeline once per *.yaml config found in the given
directory. Designs are independent: a failing design does not stop the
others, and --parallel allows several designs to run at once. Stages
within each design remain strictly sequential.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner := batch.NewRunner(&orchestrator.ExecRunner{}, batchFlags.parallel)
		runner.SetProgress(os.Stderr)
		if !batchFlags.noDB {
			if events := openEventDB(); events != nil {
				defer events.Close()
				runner.SetEventDB(events)
			}
		}

		results, err := runner.RunDir(ctx, args[0])
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		failed := 0
		for _, res := range results {
			status := "ok"
			if res.Failed() {
				failed++
				if res.Err != nil {
					status = fmt.Sprintf("error: %v", res.Err)
				} else {
					status = fmt.Sprintf("failed at stage %d", res.Outcome.FailedStage)
				}
			}
			name := res.Design
			if name == "" {
				name = res.ConfigPath
			}
			fmt.Printf("%-20s %s\n", name, status)
		}

		if failed > 0 {
			return &ExitError{
				Code: 1,
				Err:  fmt.Errorf("%d of %d designs failed", failed, len(results)),
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVarP(&batchFlags.parallel, "parallel", "p", 1, "designs to run concurrently")
	batchCmd.Flags().BoolVar(&batchFlags.noDB, "no-db", false, "skip the shared event log")
}
