// Package builtin holds the client, campaign and economics passes and the
// value recoders they are built from.
package builtin

import (
	"strings"

	"campaignetl/pkg/records"
)

// Recoder maps one cell to another. Recoders never turn a missing value
// into a present one unless documented (Flag does).
type Recoder func(records.Value) records.Value

// Chain composes recoders left to right.
func Chain(rs ...Recoder) Recoder {
	return func(v records.Value) records.Value {
		for _, r := range rs {
			v = r(v)
		}
		return v
	}
}

// ReplaceAll replaces every occurrence of old with repl in present values.
func ReplaceAll(old, repl string) Recoder {
	return func(v records.Value) records.Value {
		if v.IsNull() {
			return v
		}
		return records.String(strings.ReplaceAll(v.S, old, repl))
	}
}

// NullIf turns the exact text s into a missing value.
func NullIf(s string) Recoder {
	return func(v records.Value) records.Value {
		if v.Equals(s) {
			return records.Null
		}
		return v
	}
}

// Flag yields "1" when the value equals match exactly and "0" otherwise,
// including when the value is missing.
func Flag(match string) Recoder {
	return func(v records.Value) records.Value {
		if v.Equals(match) {
			return records.String("1")
		}
		return records.String("0")
	}
}

var (
	// cleanJob drops dots and turns dashes into underscores: "blue-collar" -> "blue_collar".
	cleanJob = Chain(ReplaceAll(".", ""), ReplaceAll("-", "_"))

	// cleanEducation turns dots into underscores and "unknown" into missing.
	cleanEducation = Chain(ReplaceAll(".", "_"), NullIf("unknown"))

	yesFlag     = Flag("yes")
	successFlag = Flag("success")
)
