// Package cli implements the campaignetl command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"campaignetl/internal/config"
	"campaignetl/internal/logging"
)

// Version is set at build time with -ldflags "-X campaignetl/internal/cli.Version=...".
var Version = "dev"

// flagKeys maps command-line flags onto config keys. Only flags that the
// running command defines are bound.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"input-dir":        "input_dir",
	"output-dir":       "output_dir",
	"skip-bad-entries": "skip_bad_entries",
	"storage":          "storage.kind",
	"dsn":              "storage.dsn",
}

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	verbose bool

	v   *viper.Viper
	cfg config.Config
	log *zap.Logger
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "campaignetl",
		Short: "Split zipped bank marketing-campaign CSVs into client, campaign and economics tables",
		Long: `campaignetl reads every *.zip bundle in the input directory, extracts the
CSV entries inside, reconciles their varying column names and writes three
normalized tables:

  client.csv     client_id, age, job, marital, education, credit_default, mortgage
  campaign.csv   client_id, number_contacts, contact_duration,
                 previous_campaign_contacts, previous_outcome,
                 campaign_outcome, last_contact_date
  economics.csv  client_id, cons_price_idx, euribor_three_months

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (CAMPAIGNETL_*)
  3. Config file (--config, else ./campaignetl.yaml)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./campaignetl.yaml when present)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console, json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (same as --log-level=debug)")

	root.AddCommand(
		newRunCommand(a),
		newValidateCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with ctx and os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// init loads configuration and builds the logger for cmd.
func (a *app) init(cmd *cobra.Command) error {
	v, err := config.NewViper(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if a.verbose {
		v.Set("log.level", "debug")
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	lg, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.v, a.cfg, a.log = v, cfg, lg
	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading so version works with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "campaignetl %s\n", Version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
