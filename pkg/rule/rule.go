package rule

import (
	"fmt"
	"strings"
)

// Kind identifies the scoping semantics of an exception rule. The string
// values match how rules are authored.
type Kind string

const (
	// HotelSpecific covers one hotel.
	HotelSpecific Kind = "Hotel_Specific"
	// CountryPattern covers every hotel in one country.
	CountryPattern Kind = "Country_Pattern"
	// HotelPattern covers a list of hotels.
	HotelPattern Kind = "Hotel_Pattern"
	// CountryRatePattern covers listed rates within one country.
	CountryRatePattern Kind = "Country_Rate_Pattern"
	// HotelRateSpecific covers one rate at one hotel.
	HotelRateSpecific Kind = "Hotel_Rate_Specific"
	// HotelRatePattern covers listed rates at listed hotels.
	HotelRatePattern Kind = "Hotel_Rate_Pattern"
	// RatePattern covers a list of rates at any hotel.
	RatePattern Kind = "Rate_Pattern"
)

// Status is the lifecycle state of a rule. Only active rules participate in
// matching; inactive rules are retained for audit.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Priority orders rules and findings for human attention.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Score returns the numeric weight of a priority for sorting. Unrecognized
// priorities sort last.
func (p Priority) Score() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}

	return 0
}

// Rule is one externally authored exception. A rule accepts a deviation when
// its field, current value, and standard value all match and its scope covers
// the deviating rate plan.
//
// Rules have no identity beyond their position in the ruleset; the first
// structurally matching active rule wins.
type Rule struct {
	// Type selects the scope predicate applied to this rule.
	Type Kind `json:"type" jsonschema:"title=Rule Type,enum=Hotel_Specific,enum=Country_Pattern,enum=Hotel_Pattern,enum=Country_Rate_Pattern,enum=Hotel_Rate_Specific,enum=Hotel_Rate_Pattern,enum=Rate_Pattern"`
	// Field is the monitored field this rule applies to.
	Field string `json:"field" jsonschema:"title=Field"`
	// HotelCode is a hotel code, or a comma-separated list for pattern kinds.
	HotelCode string `json:"hotelCode,omitempty" jsonschema:"title=Hotel Code"`
	// RateCode is a rate code, or a comma-separated list for pattern kinds.
	RateCode string `json:"rateCode,omitempty" jsonschema:"title=Rate Code"`
	// Country is the country code for country-scoped kinds.
	Country string `json:"country,omitempty" jsonschema:"title=Country"`
	// CurrentValue is the deviating value this rule accepts.
	CurrentValue string `json:"currentValue" jsonschema:"title=Current Value"`
	// StandardValue is the expected value the deviation departs from.
	StandardValue string `json:"standardValue" jsonschema:"title=Standard Value"`
	// Reason documents why the deviation is acceptable.
	Reason string `json:"reason,omitempty" jsonschema:"title=Reason"`
	// ApprovedBy names who approved the exception.
	ApprovedBy string `json:"approvedBy,omitempty" jsonschema:"title=Approved By"`
	// DateAdded is the ISO date the rule was created.
	DateAdded string `json:"dateAdded,omitempty" jsonschema:"title=Date Added"`
	// Status is Active or Inactive. Empty counts as Active.
	Status Status `json:"status,omitempty" jsonschema:"title=Status,enum=Active,enum=Inactive"`
	// Priority is inherited by accepted deviations covered by this rule.
	Priority Priority `json:"priority,omitempty" jsonschema:"title=Priority,enum=High,enum=Medium,enum=Low"`
	// ReviewDate is the ISO date after which the rule should be re-reviewed.
	ReviewDate string `json:"reviewDate,omitempty" jsonschema:"title=Review Date"`
	// Notes carries free-form annotations.
	Notes string `json:"notes,omitempty" jsonschema:"title=Notes"`

	scope scope
}

// IsActive reports whether the rule participates in matching. An empty
// status defaults to active, matching how rulesets are maintained by hand.
func (r *Rule) IsActive() bool {
	s := strings.TrimSpace(string(r.Status))

	return s == "" || strings.EqualFold(s, string(StatusActive))
}

// Compile builds the scope predicate for the rule's kind. Comma-separated
// hotel and rate lists are split and element-trimmed here, once. An
// unrecognized kind is an error rather than a silent non-match.
func (r *Rule) Compile() error {
	switch r.Type {
	case HotelSpecific:
		r.scope = hotelScope{hotel: r.HotelCode}
	case CountryPattern:
		r.scope = countryScope{country: r.Country}
	case HotelPattern:
		r.scope = hotelListScope{hotels: splitList(r.HotelCode)}
	case CountryRatePattern:
		r.scope = countryRateScope{country: r.Country, rates: splitList(r.RateCode)}
	case HotelRateSpecific:
		r.scope = hotelRateScope{hotel: r.HotelCode, rate: r.RateCode}
	case HotelRatePattern:
		r.scope = hotelRateListScope{hotels: splitList(r.HotelCode), rates: splitList(r.RateCode)}
	case RatePattern:
		r.scope = rateListScope{rates: splitList(r.RateCode)}
	default:
		return fmt.Errorf("rule kind %q: %w", r.Type, ErrUnknownKind)
	}

	return nil
}

// Covers reports whether the rule's scope includes the given rate plan
// coordinates. The rule must have been compiled first.
func (r *Rule) Covers(hotelCode, rateCode, country string) bool {
	if r.scope == nil {
		panic(fmt.Errorf("rule %s/%s not compiled", r.Type, r.Field))
	}

	return r.scope.covers(hotelCode, rateCode, country)
}

// scope is the predicate variant behind a rule kind. Each variant carries
// only the coordinates its kind inspects.
type scope interface {
	covers(hotelCode, rateCode, country string) bool
}

type hotelScope struct{ hotel string }

func (s hotelScope) covers(hotelCode, _, _ string) bool {
	return hotelCode == s.hotel
}

type countryScope struct{ country string }

func (s countryScope) covers(_, _, country string) bool {
	return country == s.country
}

type hotelListScope struct{ hotels []string }

func (s hotelListScope) covers(hotelCode, _, _ string) bool {
	return contains(s.hotels, hotelCode)
}

type countryRateScope struct {
	country string
	rates   []string
}

func (s countryRateScope) covers(_, rateCode, country string) bool {
	return country == s.country && contains(s.rates, rateCode)
}

type hotelRateScope struct{ hotel, rate string }

func (s hotelRateScope) covers(hotelCode, rateCode, _ string) bool {
	return hotelCode == s.hotel && rateCode == s.rate
}

type hotelRateListScope struct{ hotels, rates []string }

func (s hotelRateListScope) covers(hotelCode, rateCode, _ string) bool {
	return contains(s.hotels, hotelCode) && contains(s.rates, rateCode)
}

type rateListScope struct{ rates []string }

func (s rateListScope) covers(_, rateCode, _ string) bool {
	return contains(s.rates, rateCode)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}

	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
