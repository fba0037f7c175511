package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"campaignetl/internal/config"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Lint the effective configuration and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			issues := config.Validate(a.cfg)
			out := cmd.OutOrStdout()
			for _, iss := range issues {
				printf(out, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if errs := config.Errors(issues); len(errs) > 0 {
				return fmt.Errorf("configuration is invalid: %d error(s)", len(errs))
			}
			printf(out, "configuration is valid\n")
			return nil
		},
	}
}
