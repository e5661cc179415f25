package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partrita/RFantibody/internal/run"
)

var statusCmd = &cobra.Command{
	Use:   "status <output-dir>",
	Short: "Show the run state recorded under an output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := run.NewStore(args[0])
		st, err := store.Get()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		fmt.Printf("design:  %s\n", st.Design)
		fmt.Printf("run:     %s\n", st.RunID)
		fmt.Printf("status:  %s\n", st.Status)
		if st.CurrentStage != "" {
			fmt.Printf("stage:   %s\n", st.CurrentStage)
		}
		fmt.Printf("updated: %s\n", st.UpdatedAt)

		if len(st.Stages) > 0 {
			fmt.Println("\nstages:")
			for _, rec := range st.Stages {
				line := fmt.Sprintf("  [%d] %-12s %-9s exit=%d (%s)",
					rec.Index, rec.Name, rec.Status, rec.ExitCode, rec.Duration)
				if rec.Error != "" {
					line += "  " + rec.Error
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}
