package builtin

import (
	"campaignetl/internal/schema"
	"campaignetl/pkg/records"
)

// Client derives client.csv.
type Client struct{}

var clientColumns = []string{
	schema.ClientID, schema.Age, schema.Job, schema.Marital,
	schema.Education, schema.CreditDefault, schema.Mortgage,
}

func (Client) Name() string { return "client" }

func (Client) Columns() []string { return append([]string(nil), clientColumns...) }

// Apply recodes job and education and turns the credit_default and
// mortgage answers into 0/1 flags.
func (c Client) Apply(rc *schema.Reconciled) *records.Set {
	out := &records.Set{Name: c.Name(), Columns: c.Columns(), Rows: make([]records.Record, rc.Len())}
	for i := range out.Rows {
		out.Rows[i] = records.Record{
			schema.ClientID:      rc.Value(i, schema.ClientID),
			schema.Age:           rc.Value(i, schema.Age),
			schema.Job:           cleanJob(rc.Value(i, schema.Job)),
			schema.Marital:       rc.Value(i, schema.Marital),
			schema.Education:     cleanEducation(rc.Value(i, schema.Education)),
			schema.CreditDefault: yesFlag(rc.Raw(i, schema.CreditDefault)),
			schema.Mortgage:      yesFlag(rc.Raw(i, schema.Mortgage)),
		}
	}
	return out
}
