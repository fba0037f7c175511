// Package records defines the in-memory row model shared by the parser,
// the aggregator, the transformers and the writers.
//
// A Record maps column names to nullable text values. Column order is not
// carried by the Record itself; it lives on the Set that owns the rows so
// that many rows can share one header slice.
package records

// Value is a nullable text cell. The zero Value is missing (SQL NULL,
// an empty CSV cell, or a column the row's batch never had).
type Value struct {
	S     string
	Valid bool
}

// Null is the missing value.
var Null = Value{}

// String returns a present Value holding s.
func String(s string) Value { return Value{S: s, Valid: true} }

// IsNull reports whether v is missing.
func (v Value) IsNull() bool { return !v.Valid }

// Equals reports whether v is present and equal to s. A missing value never
// equals anything, including the empty string.
func (v Value) Equals(s string) bool { return v.Valid && v.S == s }

// Text returns the cell text, or "" when missing.
func (v Value) Text() string {
	if !v.Valid {
		return ""
	}
	return v.S
}

// Any returns the value as a driver-friendly any: nil when missing, the
// string otherwise.
func (v Value) Any() any {
	if !v.Valid {
		return nil
	}
	return v.S
}

// Record is one row keyed by column name. A column absent from the map is
// missing for that row.
type Record map[string]Value

// Get returns the value for col, or Null when the row has no such column.
func (r Record) Get(col string) Value { return r[col] }

// Set is an ordered collection of rows sharing one header.
type Set struct {
	// Name identifies where the rows came from ("bundle.zip/entry.csv") or,
	// for derived tables, the table name ("client").
	Name string

	// Columns is the header in source order.
	Columns []string

	Rows []Record
}

// Len returns the number of rows.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Row renders row i in header order.
func (s *Set) Row(i int) []Value {
	out := make([]Value, len(s.Columns))
	for j, c := range s.Columns {
		out[j] = s.Rows[i][c]
	}
	return out
}
