// Package schema reconciles inconsistent source headers against the
// canonical fields the output tables need.
//
// Every canonical field is declared once in the alias table below: its
// name, the source column names that may carry it in priority order, and
// the value it takes when none of them is present. Resolution is always
// "first present alias wins, else default"; no field shares aliasing logic
// with another.
package schema

import "campaignetl/pkg/records"

// Field is one canonical field.
type Field struct {
	// Name is the canonical output column.
	Name string

	// Aliases are probed in order against the Unified Table header.
	Aliases []string

	// Default is used for every row when no alias is present. A Null
	// default leaves the column missing.
	Default records.Value
}

// Canonical field names.
const (
	ClientID                 = "client_id"
	Age                      = "age"
	Job                      = "job"
	Marital                  = "marital"
	Education                = "education"
	CreditDefault            = "credit_default"
	Mortgage                 = "mortgage"
	NumberContacts           = "number_contacts"
	ContactDuration          = "contact_duration"
	PreviousCampaignContacts = "previous_campaign_contacts"
	PreviousOutcome          = "previous_outcome"
	CampaignOutcome          = "campaign_outcome"
	LastContactDate          = "last_contact_date"
	ConsPriceIdx             = "cons_price_idx"
	EuriborThreeMonths       = "euribor_three_months"

	// Day and Month feed last_contact_date.
	Day   = "day"
	Month = "month"
)

// DefaultContactDate is last_contact_date when day or month is absent.
const DefaultContactDate = "2022-01-01"

// Fields is the alias table, in output order (client, campaign, economics).
var Fields = []Field{
	{Name: ClientID, Aliases: []string{"client_id"}},
	{Name: Age, Aliases: []string{"age"}},
	{Name: Job, Aliases: []string{"job"}},
	{Name: Marital, Aliases: []string{"marital"}},
	{Name: Education, Aliases: []string{"education"}},
	{Name: CreditDefault, Aliases: []string{"credit_default", "default"}, Default: records.String("0")},
	{Name: Mortgage, Aliases: []string{"mortgage", "mortage", "housing"}, Default: records.String("0")},

	{Name: NumberContacts, Aliases: []string{"campaign", "contacts"}, Default: records.String("1")},
	{Name: ContactDuration, Aliases: []string{"duration"}, Default: records.String("0")},
	{Name: PreviousCampaignContacts, Aliases: []string{
		"previous_campaign_contacts", "previous", "pdays", "prev_contacts", "previous_contacts",
	}, Default: records.String("0")},
	{Name: PreviousOutcome, Aliases: []string{"poutcome", "previous_outcome"}, Default: records.String("0")},
	{Name: CampaignOutcome, Aliases: []string{"y", "target", "outcome", "campaign_outcome"}, Default: records.String("0")},
	{Name: Day, Aliases: []string{"day"}},
	{Name: Month, Aliases: []string{"month"}},

	{Name: ConsPriceIdx, Aliases: []string{"cons.price.idx", "cons_price_idx"}, Default: records.String("0.0")},
	{Name: EuriborThreeMonths, Aliases: []string{
		"euribor_three_months", "euribor3m", "euribor_3m", "euribor.3m",
	}, Default: records.String("0.0")},
}
