package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks a run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block a run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is the dotted config key (e.g. "storage.dsn"). Message is
// human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned directly.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors returns only the SeverityError issues.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

// Validate performs static checks over c. It does not touch the filesystem
// or the network; a missing input directory is detected at run time.
//
//	issues := config.Validate(cfg)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(c Config) []Issue {
	var issues []Issue

	issues = append(issues, validatePaths(c)...)
	issues = append(issues, validateLog(c.Log)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateStorage(c.Storage)...)

	return issues
}

func validatePaths(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.InputDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input_dir",
			Message:  "input_dir must not be empty",
		})
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output_dir",
			Message:  "output_dir must not be empty",
		})
	}
	if c.InputDir != "" && c.OutputDir != "" && filepath.Clean(c.InputDir) == filepath.Clean(c.OutputDir) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output_dir",
			Message:  "output_dir equals input_dir; outputs will sit next to the bundles",
		})
	}

	if strings.TrimSpace(c.BundlePattern) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bundle_pattern",
			Message:  "bundle_pattern must not be empty",
		})
	} else if _, err := filepath.Match(c.BundlePattern, "probe"); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "bundle_pattern",
			Message:  fmt.Sprintf("invalid glob %q: %v", c.BundlePattern, err),
		})
	}

	if strings.TrimSpace(c.EntryExt) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "entry_ext",
			Message:  "entry_ext must not be empty",
		})
	} else if !strings.HasPrefix(c.EntryExt, ".") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "entry_ext",
			Message:  fmt.Sprintf("entry_ext %q has no leading dot; it is matched as a plain suffix", c.EntryExt),
		})
	}

	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown log level %q (want debug, info, warn or error)", l.Level),
		})
	}
	switch strings.ToLower(l.Format) {
	case "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q (want console or json)", l.Format),
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a statsd address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend),
		})
		return issues
	}

	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; metrics will be hard to attribute",
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case "", "none":
		if strings.TrimSpace(s.DSN) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.dsn",
				Message:  "storage.dsn is set but storage.kind is none; nothing will be loaded",
			})
		}
		if len(s.PostLoad) > 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "storage.post_load",
				Message:  "storage.post_load is set but storage.kind is none; statements will not run",
			})
		}
	case "postgres", "sqlite", "mysql", "mssql":
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.dsn",
				Message:  fmt.Sprintf("%s storage requires a dsn", s.Kind),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (want none, postgres, sqlite, mysql or mssql)", s.Kind),
		})
	}

	if p := s.TablePrefix; p != "" {
		for _, r := range p {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     "storage.table_prefix",
					Message:  fmt.Sprintf("table_prefix %q may only contain letters, digits and underscores", p),
				})
				break
			}
		}
	}

	for i, stmt := range s.PostLoad {
		if strings.TrimSpace(stmt) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("storage.post_load[%d]", i),
				Message:  "empty statement is skipped",
			})
		}
	}

	return issues
}
