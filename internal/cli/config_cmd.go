package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/partrita/RFantibody/internal/config"
	"github.com/partrita/RFantibody/internal/stage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate pipeline configs",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a pipeline config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		errs := config.Validate(cfg)
		if len(errs) == 0 {
			fmt.Printf("%s: valid\n", args[0])
			return nil
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s\n", e.Error())
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("%s: %d validation errors", args[0], len(errs))}
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a config with defaults applied and the resolved stage commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))

		if errs := config.Validate(cfg); len(errs) > 0 {
			return nil // stage commands only make sense for valid configs
		}
		if err := cfg.Resolve(); err != nil {
			return err
		}
		stages, err := stage.Build(cfg)
		if err != nil {
			return err
		}
		fmt.Println("\n# resolved stages:")
		for _, st := range stages {
			fmt.Printf("# [%d] %s: %s\n", st.Index, st.Name, st.Command())
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
