package check

import (
	"sort"
	"strings"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/normalize"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/suggest"
)

// Status marks which report sequence a [Result] belongs to.
type Status string

const (
	StatusNeedsFixing Status = "NEEDS_FIXING"
	StatusAccepted    Status = "ACCEPTED"
)

// acceptedSuffix tags detail fragments covered by an exception rule.
const acceptedSuffix = " (ACCEPTED)"

// detailSeparator joins per-field detail fragments, in detection order.
const detailSeparator = " | "

// Exception is the rule metadata inherited by an accepted record. It comes
// from the record's first matched deviation in field evaluation order, not
// from the highest-priority match; this asymmetry is observed production
// behavior, kept pending confirmation from the business owner.
type Exception struct {
	RuleType   rule.Kind
	Reason     string
	ApprovedBy string
	Priority   rule.Priority
	ReviewDate string
	Notes      string
}

// Result is one report row: a full field snapshot of the record plus the
// deviation details that put it in this sequence. A record with both matched
// and unmatched deviations yields one Result in each sequence.
type Result struct {
	HotelCode string
	RateCode  string
	RateName  string
	Country   string

	SubaccountCurrent  string
	SubaccountStandard string
	SubaccountMatch    bool
	VATCurrent         string
	VATStandard        string
	VATMatch           bool
	CityTaxCurrent     normalize.Tristate
	CityTaxStandard    normalize.Tristate
	CityTaxMatch       bool
	CityTaxChecked     bool

	ServiceType string
	ValidFrom   string

	// Details is the pipe-separated deviation description, fields in
	// detection order.
	Details  string
	Status   Status
	Priority rule.Priority

	// Exception is set on accepted results only.
	Exception *Exception
}

// IssueCount returns the number of deviations behind this result.
func (r Result) IssueCount() int {
	if r.Details == "" {
		return 0
	}

	return strings.Count(r.Details, "|") + 1
}

// Report is the full output of a compliance run. The three sequences are
// handed to external reporting collaborators; the core defines only their
// shape.
type Report struct {
	NeedsFixing []Result
	Accepted    []Result
	Suggestions []suggest.Suggestion
	Stats       Stats
}

// FieldCount pairs a monitored field with the number of unmatched
// deviations it produced.
type FieldCount struct {
	Field plan.Field
	Count int
}

// CountryCount pairs a country with its number of needs-fixing records.
type CountryCount struct {
	Country string
	Count   int
}

// Stats summarizes a compliance run.
type Stats struct {
	// TotalAnalyzed counts rate plans that had a standard and were checked.
	TotalAnalyzed int
	// MissingStandard counts rate plans excluded for lack of a standard.
	MissingStandard int
	// SkippedHotels counts rate plans dropped by the excluded-hotel list.
	SkippedHotels int
	// CityTaxSkipped counts records whose city tax check was policy-gated off.
	CityTaxSkipped int
	// PerfectlyCompliant counts records with no deviations at all.
	PerfectlyCompliant int
	// TrueCompliant counts records that are compliant once accepted
	// exceptions are taken into account.
	TrueCompliant int
	// ComplianceRate is TrueCompliant over TotalAnalyzed, in percent.
	ComplianceRate float64
	// NeedsFixing and Accepted count report rows, not deviations.
	NeedsFixing int
	Accepted    int
	// TopIssue is the field with the most unmatched deviations, if any.
	TopIssue *FieldCount
	// TopCountries lists up to three countries by needs-fixing record count.
	TopCountries []CountryCount
}

// SortByPriority orders results by priority score, then by issue count, both
// descending. The sort is stable so equal rows keep their input order.
func SortByPriority(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority.Score() != results[j].Priority.Score() {
			return results[i].Priority.Score() > results[j].Priority.Score()
		}

		return results[i].IssueCount() > results[j].IssueCount()
	})
}

func newResult(p plan.RatePlan, std plan.Standard, cityTaxChecked bool) Result {
	curCity := normalize.Bool(p.CityTax)
	stdCity := normalize.Bool(std.CityTax)

	return Result{
		HotelCode:          p.HotelCode,
		RateCode:           p.RateCode,
		RateName:           p.RateName,
		Country:            p.Country,
		SubaccountCurrent:  trim(p.Subaccount),
		SubaccountStandard: trim(std.Subaccount),
		SubaccountMatch:    plan.FieldSubaccount.Equal(p.Subaccount, std.Subaccount),
		VATCurrent:         trim(p.VATType),
		VATStandard:        trim(std.VAT),
		VATMatch:           plan.FieldVAT.Equal(p.VATType, std.VAT),
		CityTaxCurrent:     curCity,
		CityTaxStandard:    stdCity,
		CityTaxMatch:       curCity == stdCity,
		CityTaxChecked:     cityTaxChecked,
		ServiceType:        p.ServiceType,
		ValidFrom:          p.ValidFrom,
	}
}

func trim(v string) string {
	return strings.TrimSpace(v)
}
