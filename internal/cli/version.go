package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rfab version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("rfab %s\n", version)
	},
}
