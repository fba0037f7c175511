package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campaignetl/internal/config"
	"campaignetl/internal/pipeline"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once",
		Long: `Run lists bundles in input_dir, parses their CSV entries and overwrites
client.csv, campaign.csv and economics.csv in output_dir. With storage.kind
set, the three tables are then mirrored into the database.

Example:
  campaignetl run --input-dir files/input --output-dir files/output
  campaignetl run --storage sqlite --dsn file:campaign.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd)
		},
	}

	f := cmd.Flags()
	f.String("input-dir", "", "directory holding the zip bundles")
	f.String("output-dir", "", "directory receiving the output tables")
	f.Bool("skip-bad-entries", false, "log and skip unreadable bundles or entries instead of aborting")
	f.String("storage", "", "optional database to load: none, postgres, sqlite, mysql, mssql")
	f.String("dsn", "", "database connection string for --storage")
	return cmd
}

func (a *app) run(cmd *cobra.Command) error {
	issues := config.Validate(a.cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning {
			a.log.Warn("config", zap.String("path", iss.Path), zap.String("message", iss.Message))
		}
	}
	if errs := config.Errors(issues); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(toErrors(errs)...))
	}

	r := pipeline.New(a.cfg, a.log)

	flush, err := setupMetrics(a.cfg.Metrics, r.RunID(), a.log)
	if err != nil {
		return err
	}
	defer flush()

	res, err := r.Run(cmd.Context())
	if errors.Is(err, pipeline.ErrNoInput) {
		a.log.Warn("nothing to do", zap.String("input_dir", a.cfg.InputDir), zap.Error(err))
		printf(cmd.OutOrStdout(), "no input found in %s; no files written\n", a.cfg.InputDir)
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		printf(out, "%-10s %s (%d rows, xxh3 %s)\n", f.Table, f.Path, f.Rows, f.DigestHex())
	}
	for _, t := range res.Loaded {
		printf(out, "%-10s loaded %d rows into %s\n", "db", t.Rows, t.Table)
	}
	return nil
}

func toErrors(issues []config.Issue) []error {
	out := make([]error, len(issues))
	for i, iss := range issues {
		out[i] = iss
	}
	return out
}
