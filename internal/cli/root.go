package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "rfab",
	Short: "rfab — antibody design pipeline runner",
	Long: `rfab drives the RFantibody design pipeline: RFdiffusion backbone
generation, ProteinMPNN sequence design, and RF2 structure prediction,
run as a strict fail-fast chain of external processes.

Run state is written as run.json under each design's output directory;
a shared event log lives in ~/.rfab/rfab.db.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}
