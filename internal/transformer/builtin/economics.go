package builtin

import (
	"campaignetl/internal/schema"
	"campaignetl/pkg/records"
)

// Economics derives economics.csv.
type Economics struct{}

var economicsColumns = []string{schema.ClientID, schema.ConsPriceIdx, schema.EuriborThreeMonths}

func (Economics) Name() string { return "economics" }

func (Economics) Columns() []string { return append([]string(nil), economicsColumns...) }

func (e Economics) Apply(rc *schema.Reconciled) *records.Set {
	out := &records.Set{Name: e.Name(), Columns: e.Columns(), Rows: make([]records.Record, rc.Len())}
	for i := range out.Rows {
		out.Rows[i] = records.Record{
			schema.ClientID:           rc.Value(i, schema.ClientID),
			schema.ConsPriceIdx:       rc.Value(i, schema.ConsPriceIdx),
			schema.EuriborThreeMonths: rc.Value(i, schema.EuriborThreeMonths),
		}
	}
	return out
}
