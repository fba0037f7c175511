package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"campaignetl/pkg/records"
)

func set(cols []string, rows ...[]string) *records.Set {
	s := &records.Set{Columns: cols}
	for _, r := range rows {
		rec := records.Record{}
		for i, v := range r {
			if v != "" {
				rec[cols[i]] = records.String(v)
			}
		}
		s.Rows = append(s.Rows, rec)
	}
	return s
}

func TestConcat_WidensAndSynthesizesIDs(t *testing.T) {
	t.Parallel()

	a := set([]string{"age", "housing"}, []string{"30", "yes"}, []string{"31", "no"})
	b := set([]string{"age", "mortgage"}, []string{"40", "yes"})

	u := Concat(a, b)

	if diff := cmp.Diff([]string{"age", "housing", "mortgage", ClientIDColumn}, u.Columns()); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if u.Len() != 3 {
		t.Fatalf("len=%d want 3", u.Len())
	}
	if !u.SynthesizedID() {
		t.Fatalf("expected synthesized ids")
	}
	for i := 0; i < u.Len(); i++ {
		want := records.String([]string{"0", "1", "2"}[i])
		if got := u.Value(i, ClientIDColumn); got != want {
			t.Fatalf("row %d client_id=%+v want %+v", i, got, want)
		}
	}
	if v := u.Value(2, "housing"); !v.IsNull() {
		t.Fatalf("row from batch without housing should be missing, got %+v", v)
	}
	if v := u.Value(0, "mortgage"); !v.IsNull() {
		t.Fatalf("row from batch without mortgage should be missing, got %+v", v)
	}
}

func TestConcat_KeepsSourceIDs(t *testing.T) {
	t.Parallel()

	u := Concat(set([]string{"client_id", "age"}, []string{"17", "30"}, []string{"4", "31"}))
	if u.SynthesizedID() {
		t.Fatalf("source ids must not be replaced")
	}
	if got := u.Value(1, ClientIDColumn); !got.Equals("4") {
		t.Fatalf("client_id=%+v want 4", got)
	}
	if u.EnsureClientID() {
		t.Fatalf("EnsureClientID reported synthesis on a table with ids")
	}
}

func TestConcat_Empty(t *testing.T) {
	t.Parallel()

	u := Concat()
	if u.Len() != 0 {
		t.Fatalf("len=%d want 0", u.Len())
	}
	if !u.Has(ClientIDColumn) {
		t.Fatalf("client_id should still be declared")
	}
}
