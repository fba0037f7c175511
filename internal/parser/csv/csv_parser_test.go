package csv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pcsv "campaignetl/internal/parser/csv"
	"campaignetl/pkg/records"
)

func TestParseHeaderAndRows(t *testing.T) {
	t.Parallel()

	const in = "\uFEFFage, job ,education\n35,admin.,university.degree\n41,,unknown\n"
	set, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if diff := cmp.Diff([]string{"age", "job", "education"}, set.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if got, want := set.Len(), 2; got != want {
		t.Fatalf("len=%d want=%d", got, want)
	}
	if v := set.Rows[0]["job"]; !v.Equals("admin.") {
		t.Fatalf("job=%v want admin.", v)
	}
	if v := set.Rows[1]["job"]; !v.IsNull() {
		t.Fatalf("empty cell should be missing, got %+v", v)
	}
	if v := set.Rows[1]["education"]; !v.Equals("unknown") {
		t.Fatalf("education=%v want literal unknown", v)
	}
}

func TestParseShortRowPadsMissing(t *testing.T) {
	t.Parallel()

	set, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader("a,b,c\n1,2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []records.Value{records.String("1"), records.String("2"), records.Null}
	if diff := cmp.Diff(want, set.Row(0)); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		wantErr error
		substr  string
	}{
		{name: "empty_input", in: "", wantErr: pcsv.ErrNoHeader},
		{name: "too_many_fields", in: "a,b\n1,2,3\n", substr: "line 2"},
		{name: "bad_quote", in: "a,b\n\"x,2\n", substr: "line"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(tc.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v want errors.Is %v", err, tc.wantErr)
			}
			if tc.substr != "" && !strings.Contains(err.Error(), tc.substr) {
				t.Fatalf("err=%q want substring %q", err, tc.substr)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{
		Comma:     ';',
		TrimSpace: true,
		HeaderMap: map[string]string{"cons.price.idx": "cons_price_idx"},
	})
	set, err := p.Parse(strings.NewReader("cons.price.idx; y\n 93.994 ; yes \n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := set.Rows[0]["cons_price_idx"]; !v.Equals("93.994") {
		t.Fatalf("cons_price_idx=%+v want 93.994", v)
	}
	if v := set.Rows[0]["y"]; !v.Equals("yes") {
		t.Fatalf("y=%+v want yes", v)
	}
}
