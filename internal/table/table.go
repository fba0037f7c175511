// Package table concatenates parsed record sets into one Unified Table.
//
// The Unified Table's header is the union of every set's columns in
// first-seen order. Rows keep their own sparse Record maps, so a row from a
// batch that lacked a column simply has no key for it and reads as missing.
package table

import (
	"strconv"

	"campaignetl/pkg/records"
)

// ClientIDColumn is the identifier column shared by every output table.
const ClientIDColumn = "client_id"

// Unified is the concatenation of all input rows. It is built once and is
// read-only afterwards; concurrent readers need no locking.
type Unified struct {
	columns []string
	present map[string]struct{}
	rows    []records.Record

	synthesizedID bool
}

// New returns an empty Unified table.
func New() *Unified {
	return &Unified{present: map[string]struct{}{}}
}

// Concat builds a Unified table from sets in order and assigns client ids
// when the union has none.
func Concat(sets ...*records.Set) *Unified {
	u := New()
	for _, s := range sets {
		u.Append(s)
	}
	u.EnsureClientID()
	return u
}

// Append adds every row of s, widening the header with any new columns.
func (u *Unified) Append(s *records.Set) {
	if s == nil {
		return
	}
	for _, c := range s.Columns {
		if _, ok := u.present[c]; ok {
			continue
		}
		u.present[c] = struct{}{}
		u.columns = append(u.columns, c)
	}
	u.rows = append(u.rows, s.Rows...)
}

// EnsureClientID assigns 0..N-1 by row position when no client_id column
// exists. It reports whether identifiers were synthesized. Calling it again
// is a no-op.
func (u *Unified) EnsureClientID() bool {
	if u.Has(ClientIDColumn) {
		return u.synthesizedID
	}
	for i, r := range u.rows {
		r[ClientIDColumn] = records.String(strconv.Itoa(i))
	}
	u.present[ClientIDColumn] = struct{}{}
	u.columns = append(u.columns, ClientIDColumn)
	u.synthesizedID = true
	return true
}

// SynthesizedID reports whether client_id came from row positions.
func (u *Unified) SynthesizedID() bool { return u.synthesizedID }

// Has reports whether any input batch carried col.
func (u *Unified) Has(col string) bool {
	_, ok := u.present[col]
	return ok
}

// Columns returns the column union in first-seen order.
func (u *Unified) Columns() []string {
	return append([]string(nil), u.columns...)
}

// Len returns the number of rows.
func (u *Unified) Len() int { return len(u.rows) }

// Row returns row i. Callers must not modify it.
func (u *Unified) Row(i int) records.Record { return u.rows[i] }

// Value returns row i's value for col, missing when absent.
func (u *Unified) Value(i int, col string) records.Value { return u.rows[i][col] }
