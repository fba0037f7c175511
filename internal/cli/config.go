package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect campaignetl configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Display the configuration after merging defaults, the config file,
CAMPAIGNETL_* environment variables and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f := a.v.ConfigFileUsed(); f != "" {
				printf(cmd.ErrOrStderr(), "Configuration file: %s\n", f)
			} else {
				printf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n")
			}
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})
	return cmd
}
