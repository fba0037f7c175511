package schema

import (
	"sort"

	"go.uber.org/zap"

	"campaignetl/internal/table"
	"campaignetl/pkg/records"
)

// Resolution is the outcome of probing one Field against a table header.
type Resolution struct {
	Field Field

	// Source is the winning alias; empty when no alias was present.
	Source string
}

// Found reports whether some alias was present.
func (r Resolution) Found() bool { return r.Source != "" }

// Resolve probes f's aliases against t in priority order.
func (f Field) Resolve(t *table.Unified) Resolution {
	for _, a := range f.Aliases {
		if t.Has(a) {
			return Resolution{Field: f, Source: a}
		}
	}
	return Resolution{Field: f}
}

// Reconciled is a Unified Table plus one Resolution per canonical field.
// It is read-only and safe to share between goroutines.
type Reconciled struct {
	Table *table.Unified

	byName map[string]Resolution
}

// Reconcile resolves every field in Fields against t. Unresolved fields are
// logged as warnings and fall back to their defaults; nothing here fails.
func Reconcile(t *table.Unified, lg *zap.Logger) *Reconciled {
	if lg == nil {
		lg = zap.NewNop()
	}
	rc := &Reconciled{Table: t, byName: make(map[string]Resolution, len(Fields))}
	for _, f := range Fields {
		res := f.Resolve(t)
		rc.byName[f.Name] = res
		if !res.Found() {
			lg.Warn("canonical field not found in any bundle; using default",
				zap.String("field", f.Name),
				zap.Strings("aliases", f.Aliases),
				zap.String("default", f.Default.Text()))
			continue
		}
		lg.Debug("canonical field resolved", zap.String("field", f.Name), zap.String("source", res.Source))
	}
	return rc
}

// Resolution returns the resolution for a canonical field name. Unknown
// names resolve to a Field with no aliases, i.e. always missing.
func (rc *Reconciled) Resolution(name string) Resolution {
	if r, ok := rc.byName[name]; ok {
		return r
	}
	return Resolution{Field: Field{Name: name}}
}

// Has reports whether the canonical field was resolved from some alias.
func (rc *Reconciled) Has(name string) bool { return rc.Resolution(name).Found() }

// Raw returns row i's source value for the field, or Null when no alias was
// present. Use it when the caller derives its own value and applies its own
// fallback.
func (rc *Reconciled) Raw(i int, name string) records.Value {
	r := rc.Resolution(name)
	if !r.Found() {
		return records.Null
	}
	return rc.Table.Value(i, r.Source)
}

// Value returns row i's value for the field: the source value when an alias
// was present (which may still be missing for rows whose batch lacked it),
// else the field default.
func (rc *Reconciled) Value(i int, name string) records.Value {
	r := rc.Resolution(name)
	if !r.Found() {
		return r.Field.Default
	}
	return rc.Table.Value(i, r.Source)
}

// Missing lists the canonical fields no alias resolved, sorted by name.
func (rc *Reconciled) Missing() []string {
	var out []string
	for name, r := range rc.byName {
		if !r.Found() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of rows.
func (rc *Reconciled) Len() int { return rc.Table.Len() }
