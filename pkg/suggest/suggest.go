// Package suggest mines unmatched deviations for recurring patterns and
// proposes new exception rules.
//
// The heuristic is deliberately cheap: two cardinality checks over the
// hotels, countries, and rates involved in each recurring (field, current,
// standard) pattern. It trades recall for suggestions that an operator can
// read and understand.
package suggest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
)

// DefaultMinOccurrences is the pattern threshold below which no suggestion
// is produced.
const DefaultMinOccurrences = 3

// maxHotelsForRatePattern bounds how many distinct hotels a suggested
// hotel+rate pattern may span before it stops being a readable rule.
const maxHotelsForRatePattern = 5

// approverPlaceholder marks suggested rules as awaiting human approval.
const approverPlaceholder = "[TO_BE_APPROVED]"

// Suggestion is a proposed exception rule together with the number of
// deviations that motivated it. Suggested rules are always inactive; a human
// has to activate them.
type Suggestion struct {
	Rule        rule.Rule
	Occurrences int
}

type patternKey struct {
	field    plan.Field
	current  string
	standard string
}

// Generate proposes exception rules for deviation patterns occurring at
// least minOccurrences times (pass 0 for the default threshold). The now
// argument stamps the proposed rules' DateAdded.
//
// A pattern spanning many hotels in a single country becomes a country-wide
// rule (rate-scoped when several rates are involved); a pattern confined to
// a handful of hotels across several rates becomes a hotel+rate pattern.
// Anything else produces no suggestion.
func Generate(devs []plan.Deviation, minOccurrences int, now time.Time) []Suggestion {
	if minOccurrences <= 0 {
		minOccurrences = DefaultMinOccurrences
	}

	groups := make(map[patternKey][]plan.Deviation)
	for _, d := range devs {
		k := patternKey{field: d.Field, current: d.Current, standard: d.Standard}
		groups[k] = append(groups[k], d)
	}

	suggestions := make([]Suggestion, 0, len(groups))
	for k, occurrences := range groups {
		if len(occurrences) < minOccurrences {
			continue
		}

		countries := distinct(occurrences, func(d plan.Deviation) string { return d.Country })
		hotels := distinct(occurrences, func(d plan.Deviation) string { return d.HotelCode })
		rates := distinct(occurrences, func(d plan.Deviation) string { return d.RateCode })

		s, ok := propose(k, len(occurrences), countries, hotels, rates, now)
		if !ok {
			continue
		}

		suggestions = append(suggestions, s)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Rule.Priority != b.Rule.Priority {
			return a.Rule.Priority.Score() > b.Rule.Priority.Score()
		}
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.Rule.Field != b.Rule.Field {
			return a.Rule.Field < b.Rule.Field
		}
		if a.Rule.CurrentValue != b.Rule.CurrentValue {
			return a.Rule.CurrentValue < b.Rule.CurrentValue
		}

		return a.Rule.StandardValue < b.Rule.StandardValue
	})

	return suggestions
}

func propose(k patternKey, count int, countries, hotels, rates []string, now time.Time) (Suggestion, bool) {
	base := rule.Rule{
		Field:         string(k.field),
		CurrentValue:  k.current,
		StandardValue: k.standard,
		ApprovedBy:    approverPlaceholder,
		DateAdded:     now.Format(time.DateOnly),
		Status:        rule.StatusInactive,
		Priority:      priorityFor(count),
	}

	switch {
	case len(countries) == 1 && len(hotels) > 1:
		country := countries[0]
		if len(rates) > 1 {
			base.Type = rule.CountryRatePattern
			base.Country = country
			base.RateCode = strings.Join(rates, ",")
			base.Reason = fmt.Sprintf("Multiple %s hotels with %s deviation (%d instances)", country, k.field, count)
		} else {
			base.Type = rule.CountryPattern
			base.Country = country
			base.Reason = fmt.Sprintf("All %s hotels with %s deviation (%d instances)", country, k.field, count)
		}

	case len(hotels) <= maxHotelsForRatePattern && len(rates) > 1:
		base.Type = rule.HotelRatePattern
		base.HotelCode = strings.Join(hotels, ",")
		base.RateCode = strings.Join(rates, ",")
		base.Reason = fmt.Sprintf("Specific hotels with specific rates %s deviation (%d instances)", k.field, count)

	default:
		return Suggestion{}, false
	}

	return Suggestion{Rule: base, Occurrences: count}, true
}

func priorityFor(occurrences int) rule.Priority {
	if occurrences > 10 {
		return rule.PriorityHigh
	}

	return rule.PriorityMedium
}

// distinct returns the sorted, de-duplicated values of key over devs.
func distinct(devs []plan.Deviation, key func(plan.Deviation) string) []string {
	set := make(map[string]struct{}, len(devs))
	for _, d := range devs {
		set[key(d)] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}

	sort.Strings(out)

	return out
}
