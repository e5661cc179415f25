package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partrita/RFantibody/internal/db"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := db.DefaultDBPath()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		events, err := db.Open(path)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		defer events.Close()
		if err := events.Migrate(); err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		runs, err := events.RecentRuns(historyFlags.limit)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-11s  %s\n", "RUN", "DESIGN", "STATUS", "STARTED")
		for _, r := range runs {
			fmt.Printf("%-36s  %-16s  %-11s  %s\n", r.RunID, r.Design, r.Status, r.StartedAt)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "maximum runs to list")
}
