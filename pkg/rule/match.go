package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
)

// Match is the outcome of a successful rule lookup: the covering rule and
// its position in the ruleset.
type Match struct {
	Rule  *Rule
	Index int
}

// Matcher resolves deviations against an ordered exception ruleset.
//
// Order is a real invariant: the first active rule whose structure and scope
// both match wins, with no further tie-breaking. The ruleset is therefore a
// slice end to end, never a map.
type Matcher struct {
	rules []*Rule
}

// NewMatcher compiles the given rules, preserving order, and returns a
// [Matcher] over the active ones. Inactive rules are dropped here; they never
// participate in matching.
func NewMatcher(rules []Rule) (*Matcher, error) {
	active := FilterActive(rules)

	compiled := make([]*Rule, 0, len(active))
	for i := range active {
		r := active[i]
		if err := r.Compile(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		compiled = append(compiled, &r)
	}

	return &Matcher{rules: compiled}, nil
}

// Rules returns the active, compiled ruleset in matching order.
func (m *Matcher) Rules() []*Rule {
	return m.rules
}

// Match returns the first rule covering the deviation, or false when no rule
// does. A rule is a candidate only when its field, current value, and
// standard value all equal the deviation's (case-insensitive, trimmed); for
// candidates the scope predicate of the rule's kind decides. A rule with an
// empty field never becomes a candidate, so a malformed rule degrades to a
// non-match instead of halting the run.
func (m *Matcher) Match(d plan.Deviation) (Match, bool) {
	for i, r := range m.rules {
		if !strings.EqualFold(r.Field, string(d.Field)) {
			continue
		}
		if !eqFold(r.CurrentValue, d.Current) || !eqFold(r.StandardValue, d.Standard) {
			continue
		}

		if r.Covers(d.HotelCode, d.RateCode, d.Country) {
			return Match{Rule: r, Index: i}, true
		}
	}

	return Match{}, false
}

// FilterActive returns the active rules in their original order. An empty
// status counts as active.
func FilterActive(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive() {
			out = append(out, r)
		}
	}

	return out
}

// NeedingReview returns the active rules whose review date has arrived.
// Rules without a parseable review date are skipped.
func NeedingReview(rules []Rule, now time.Time) []Rule {
	out := make([]Rule, 0)
	for _, r := range rules {
		if !r.IsActive() || strings.TrimSpace(r.ReviewDate) == "" {
			continue
		}

		reviewAt, err := time.Parse(time.DateOnly, strings.TrimSpace(r.ReviewDate))
		if err != nil {
			continue
		}

		if !reviewAt.After(now) {
			out = append(out, r)
		}
	}

	return out
}

func eqFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
