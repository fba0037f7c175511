package builtin

import (
	"campaignetl/internal/schema"
	"campaignetl/pkg/records"
)

// Campaign derives campaign.csv.
type Campaign struct{}

var campaignColumns = []string{
	schema.ClientID, schema.NumberContacts, schema.ContactDuration,
	schema.PreviousCampaignContacts, schema.PreviousOutcome,
	schema.CampaignOutcome, schema.LastContactDate,
}

func (Campaign) Name() string { return "campaign" }

func (Campaign) Columns() []string { return append([]string(nil), campaignColumns...) }

// Apply copies the contact counters, flags the previous and current
// outcomes, and builds last_contact_date. The date is only derived when both
// day and month exist in the input; otherwise every row gets the default.
func (c Campaign) Apply(rc *schema.Reconciled) *records.Set {
	deriveDate := rc.Has(schema.Day) && rc.Has(schema.Month)
	fallback := records.String(schema.DefaultContactDate)

	out := &records.Set{Name: c.Name(), Columns: c.Columns(), Rows: make([]records.Record, rc.Len())}
	for i := range out.Rows {
		date := fallback
		if deriveDate {
			date = records.String(ContactDate(rc.Raw(i, schema.Day), rc.Raw(i, schema.Month)))
		}
		out.Rows[i] = records.Record{
			schema.ClientID:                 rc.Value(i, schema.ClientID),
			schema.NumberContacts:           rc.Value(i, schema.NumberContacts),
			schema.ContactDuration:          rc.Value(i, schema.ContactDuration),
			schema.PreviousCampaignContacts: rc.Value(i, schema.PreviousCampaignContacts),
			schema.PreviousOutcome:          successFlag(rc.Raw(i, schema.PreviousOutcome)),
			schema.CampaignOutcome:          yesFlag(rc.Raw(i, schema.CampaignOutcome)),
			schema.LastContactDate:          date,
		}
	}
	return out
}
