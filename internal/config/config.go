// Package config defines the run configuration for campaignetl and loads it
// with viper.
//
// Precedence, highest first:
//
//  1. CLI flags bound by the caller
//  2. Environment variables (CAMPAIGNETL_INPUT_DIR, CAMPAIGNETL_LOG_LEVEL, ...)
//  3. Config file (YAML; --config, else ./campaignetl.yaml when present)
//  4. Defaults (Default)
//
// Example (trimmed):
//
//	input_dir: files/input
//	output_dir: files/output
//	skip_bad_entries: false
//	log:
//	  level: info
//	  format: console
//	storage:
//	  kind: sqlite
//	  dsn: file:campaign.db
//	  post_load:
//	    - CREATE INDEX client_id_idx ON {prefix}client (client_id)
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CAMPAIGNETL"

// Config is the full run configuration.
type Config struct {
	// InputDir holds the compressed bundles.
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives client.csv, campaign.csv and economics.csv.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// BundlePattern selects bundles inside InputDir (filepath.Match syntax).
	BundlePattern string `mapstructure:"bundle_pattern" yaml:"bundle_pattern"`

	// EntryExt selects tabular entries inside a bundle.
	EntryExt string `mapstructure:"entry_ext" yaml:"entry_ext"`

	// SkipBadEntries logs and skips unreadable bundles/entries instead of
	// aborting the run.
	SkipBadEntries bool `mapstructure:"skip_bad_entries" yaml:"skip_bad_entries"`

	// Verify re-reads every written file and checks header, rows and digest.
	Verify bool `mapstructure:"verify" yaml:"verify"`

	Log     Log     `mapstructure:"log" yaml:"log"`
	Metrics Metrics `mapstructure:"metrics" yaml:"metrics"`
	Storage Storage `mapstructure:"storage" yaml:"storage"`
}

// Log configures the process logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Job labels every metric and is the Pushgateway grouping key.
	Job string `mapstructure:"job" yaml:"job"`

	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" yaml:"datadog_addr"`
}

// Storage selects an optional database that mirrors the three CSV tables.
type Storage struct {
	// Kind is one of "none", "postgres", "sqlite", "mysql", "mssql".
	Kind string `mapstructure:"kind" yaml:"kind"`

	// DSN is passed to the driver unchanged.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// TablePrefix is prepended to client, campaign and economics.
	TablePrefix string `mapstructure:"table_prefix" yaml:"table_prefix"`

	// PostLoad statements run in order after every table is loaded, e.g.
	// indexes or grants. "{prefix}" expands to TablePrefix.
	PostLoad []string `mapstructure:"post_load" yaml:"post_load,omitempty"`
}

// Enabled reports whether a database load is configured.
func (s Storage) Enabled() bool {
	k := strings.TrimSpace(s.Kind)
	return k != "" && k != "none"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		InputDir:      "files/input",
		OutputDir:     "files/output",
		BundlePattern: "*.zip",
		EntryExt:      ".csv",
		Verify:        true,
		Log:           Log{Level: "info", Format: "console"},
		Metrics: Metrics{
			Backend:        "none",
			Job:            "campaignetl",
			PushgatewayURL: "http://localhost:9091",
			DatadogAddr:    "127.0.0.1:8125",
		},
		Storage: Storage{Kind: "none"},
	}
}

// SetDefaults registers Default on v so that env lookups and Unmarshal see
// every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("bundle_pattern", d.BundlePattern)
	v.SetDefault("entry_ext", d.EntryExt)
	v.SetDefault("skip_bad_entries", d.SkipBadEntries)
	v.SetDefault("verify", d.Verify)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.backend", d.Metrics.Backend)
	v.SetDefault("metrics.job", d.Metrics.Job)
	v.SetDefault("metrics.pushgateway_url", d.Metrics.PushgatewayURL)
	v.SetDefault("metrics.datadog_addr", d.Metrics.DatadogAddr)
	v.SetDefault("storage.kind", d.Storage.Kind)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.table_prefix", d.Storage.TablePrefix)
}

// NewViper returns a viper instance with defaults and env overrides set up.
// When file is non-empty it must exist; otherwise ./campaignetl.yaml is used
// if present.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("campaignetl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes v into a Config.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Load is NewViper followed by FromViper.
func Load(file string) (Config, *viper.Viper, error) {
	v, err := NewViper(file)
	if err != nil {
		return Config{}, nil, err
	}
	c, err := FromViper(v)
	if err != nil {
		return Config{}, nil, err
	}
	return c, v, nil
}
