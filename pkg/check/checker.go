package check

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/suggest"
)

// Checker runs the full deviation-and-exception pipeline over a collection
// of rate plans: detection, exception matching, classification, and rule
// suggestion.
type Checker struct {
	standards      *plan.StandardSet
	matcher        *rule.Matcher
	member         plan.Membership
	excluded       map[string]struct{}
	minOccurrences int
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures a [Checker].
type Option func(*Checker)

// WithMembership sets the city tax policy membership predicate. Without it,
// no hotel is considered enrolled and the city tax field is never evaluated.
func WithMembership(m plan.Membership) Option {
	return func(c *Checker) {
		c.member = m
	}
}

// WithExcludedHotels drops rate plans for the listed hotels before analysis.
func WithExcludedHotels(hotelCodes []string) Option {
	return func(c *Checker) {
		c.excluded = make(map[string]struct{}, len(hotelCodes))
		for _, h := range hotelCodes {
			c.excluded[strings.TrimSpace(h)] = struct{}{}
		}
	}
}

// WithMinOccurrences sets the suggestion threshold.
func WithMinOccurrences(n int) Option {
	return func(c *Checker) {
		c.minOccurrences = n
	}
}

// WithLogger sets the logger used for run progress and the summary.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithNow overrides the clock used to stamp suggested rules.
func WithNow(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// New creates a [Checker] over the given standards and exception matcher.
func New(standards *plan.StandardSet, matcher *rule.Matcher, opts ...Option) *Checker {
	c := &Checker{
		standards:      standards,
		matcher:        matcher,
		minOccurrences: suggest.DefaultMinOccurrences,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run audits the rate plans and returns the full report. Given the same
// plans, standards, and ruleset it returns identical results; the needs-
// fixing sequence comes back priority-sorted.
func (c *Checker) Run(plans []plan.RatePlan) *Report {
	rpt := &Report{}
	stats := &rpt.Stats

	var unmatchedAll []plan.Deviation

	fieldCounts := make(map[plan.Field]int)
	countryCounts := make(map[string]int)

	c.logger.Info("checking rate plans",
		slog.Int("plans", len(plans)),
		slog.Int("standards", c.standards.Len()),
		slog.Int("rules", len(c.matcher.Rules())),
	)

	for _, p := range plans {
		if _, skip := c.excluded[p.HotelCode]; skip {
			stats.SkippedHotels++

			continue
		}

		std, ok := c.standards.Lookup(p.HotelCode)
		if !ok {
			// No standard means the plan is not analyzable at all.
			stats.MissingStandard++

			continue
		}

		stats.TotalAnalyzed++

		det := Detect(p, std, c.member)
		if det.CityTaxSkipped {
			stats.CityTaxSkipped++
		}

		resolved := c.resolve(det.Deviations)

		var matched, unmatched []Deviation
		for _, d := range resolved {
			if d.Match != nil {
				matched = append(matched, d)
			} else {
				unmatched = append(unmatched, d)
			}
		}

		if len(unmatched) > 0 {
			res := newResult(p, std, !det.CityTaxSkipped)
			res.Details = joinDetails(unmatched, "")
			res.Status = StatusNeedsFixing
			res.Priority = rule.PriorityMedium
			if len(unmatched) > 1 {
				res.Priority = rule.PriorityHigh
			}

			rpt.NeedsFixing = append(rpt.NeedsFixing, res)
			countryCounts[p.Country]++

			for _, d := range unmatched {
				fieldCounts[d.Field]++
				unmatchedAll = append(unmatchedAll, d.Deviation)
			}
		}

		if len(matched) > 0 {
			res := newResult(p, std, !det.CityTaxSkipped)
			res.Details = joinDetails(matched, acceptedSuffix)
			res.Status = StatusAccepted
			res.Exception = inheritException(matched[0].Match.Rule)
			res.Priority = res.Exception.Priority

			rpt.Accepted = append(rpt.Accepted, res)
		}
	}

	SortByPriority(rpt.NeedsFixing)

	rpt.Suggestions = suggest.Generate(unmatchedAll, c.minOccurrences, c.now())

	c.finishStats(stats, rpt, fieldCounts, countryCounts)
	c.logSummary(stats, len(rpt.Suggestions))

	return rpt
}

// resolve matches each deviation against the active ruleset, preserving
// detection order.
func (c *Checker) resolve(devs []plan.Deviation) []Deviation {
	out := make([]Deviation, 0, len(devs))
	for _, d := range devs {
		res := Deviation{Deviation: d}
		if m, ok := c.matcher.Match(d); ok {
			res.Match = &m
		}

		out = append(out, res)
	}

	return out
}

// inheritException copies audit metadata from the first matched rule.
func inheritException(r *rule.Rule) *Exception {
	priority := r.Priority
	if priority == "" {
		priority = rule.PriorityMedium
	}

	return &Exception{
		RuleType:   r.Type,
		Reason:     r.Reason,
		ApprovedBy: r.ApprovedBy,
		Priority:   priority,
		ReviewDate: r.ReviewDate,
		Notes:      r.Notes,
	}
}

func joinDetails(devs []Deviation, suffix string) string {
	fragments := make([]string, 0, len(devs))
	for _, d := range devs {
		fragments = append(fragments, d.Detail()+suffix)
	}

	return strings.Join(fragments, detailSeparator)
}

func (c *Checker) finishStats(stats *Stats, rpt *Report, fieldCounts map[plan.Field]int, countryCounts map[string]int) {
	stats.NeedsFixing = len(rpt.NeedsFixing)
	stats.Accepted = len(rpt.Accepted)
	stats.PerfectlyCompliant = stats.TotalAnalyzed - stats.NeedsFixing - stats.Accepted
	stats.TrueCompliant = stats.TotalAnalyzed - stats.NeedsFixing
	if stats.TotalAnalyzed > 0 {
		stats.ComplianceRate = float64(stats.TrueCompliant) / float64(stats.TotalAnalyzed) * 100
	}

	// Field order breaks ties, so the top issue is deterministic.
	for _, f := range plan.Fields() {
		n := fieldCounts[f]
		if n == 0 {
			continue
		}
		if stats.TopIssue == nil || n > stats.TopIssue.Count {
			stats.TopIssue = &FieldCount{Field: f, Count: n}
		}
	}

	countries := make([]CountryCount, 0, len(countryCounts))
	for country, n := range countryCounts {
		countries = append(countries, CountryCount{Country: country, Count: n})
	}

	sort.Slice(countries, func(i, j int) bool {
		if countries[i].Count != countries[j].Count {
			return countries[i].Count > countries[j].Count
		}

		return countries[i].Country < countries[j].Country
	})

	if len(countries) > 3 {
		countries = countries[:3]
	}

	stats.TopCountries = countries
}

func (c *Checker) logSummary(stats *Stats, suggestions int) {
	c.logger.Info("compliance summary",
		slog.String("analyzed", humanize.Comma(int64(stats.TotalAnalyzed))),
		slog.String("perfect", humanize.Comma(int64(stats.PerfectlyCompliant))),
		slog.String("accepted", humanize.Comma(int64(stats.Accepted))),
		slog.String("needs_fixing", humanize.Comma(int64(stats.NeedsFixing))),
		slog.String("compliance_rate", humanize.FtoaWithDigits(stats.ComplianceRate, 1)+"%"),
		slog.String("city_tax_skipped", humanize.Comma(int64(stats.CityTaxSkipped))),
	)

	if stats.MissingStandard > 0 {
		c.logger.Debug("rate plans without standards excluded",
			slog.Int("count", stats.MissingStandard),
		)
	}

	if suggestions > 0 {
		c.logger.Info("suggested new exception rules",
			slog.Int("count", suggestions),
		)
	}
}
