package check

import (
	"github.com/alexwiepking-a11y/CRPM-check/pkg/normalize"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
)

// Detection is the result of comparing one rate plan against its hotel's
// standard. CityTaxSkipped is part of the result rather than a shared
// counter so that detection stays a pure function and batches can run
// concurrently.
type Detection struct {
	Deviations     []plan.Deviation
	CityTaxSkipped bool
}

// Detect compares each monitored field of a rate plan against the hotel's
// standard and returns the deviations in fixed field order (Subaccount, VAT,
// City Tax).
//
// City tax is only evaluated for hotels enrolled in the city tax policy;
// for other hotels the field is skipped entirely and neither a deviation nor
// a match is produced. Callers must only pass plans whose hotel has a
// standard; pairing a plan with the wrong standard is a contract violation
// Detect does not guard against.
func Detect(p plan.RatePlan, std plan.Standard, member plan.Membership) Detection {
	var det Detection

	for _, f := range plan.Fields() {
		if f == plan.FieldCityTax && (member == nil || !member(p.HotelCode)) {
			det.CityTaxSkipped = true

			continue
		}

		current := p.FieldValue(f)
		standard := std.FieldValue(f)
		if f.Equal(current, standard) {
			continue
		}

		cur, stdv := displayValues(f, current, standard)
		det.Deviations = append(det.Deviations, plan.Deviation{
			HotelCode: p.HotelCode,
			RateCode:  p.RateCode,
			Country:   p.Country,
			Field:     f,
			Current:   cur,
			Standard:  stdv,
		})
	}

	return det
}

// Deviation is a detected deviation together with its resolution state.
// Match is nil while the deviation is unmatched.
type Deviation struct {
	plan.Deviation

	Match *rule.Match
}

// Outcome classifies a record's deviation set as a whole.
type Outcome string

const (
	// OutcomeCompliant means the record produced no deviations.
	OutcomeCompliant Outcome = "Compliant"
	// OutcomeAccepted means every deviation is covered by an exception rule.
	OutcomeAccepted Outcome = "Accepted"
	// OutcomeNeedsFixing means at least one deviation is unmatched.
	OutcomeNeedsFixing Outcome = "NeedsFixing"
)

// Classify reduces a record's resolved deviations to a single outcome.
// Accepted and NeedsFixing are not mutually exclusive at the report level; a
// record with both matched and unmatched deviations classifies as
// NeedsFixing but still surfaces its accepted deviations.
func Classify(devs []Deviation) Outcome {
	if len(devs) == 0 {
		return OutcomeCompliant
	}

	for _, d := range devs {
		if d.Match == nil {
			return OutcomeNeedsFixing
		}
	}

	return OutcomeAccepted
}

// displayValues returns the values carried on the deviation and rendered in
// detail strings: trimmed raw values for Subaccount and VAT, canonical
// tri-state values for City Tax.
func displayValues(f plan.Field, current, standard string) (string, string) {
	if f == plan.FieldCityTax {
		return string(normalize.Bool(current)), string(normalize.Bool(standard))
	}

	return trim(current), trim(standard)
}
