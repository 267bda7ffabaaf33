package suggest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/suggest"
)

var testNow = time.Date(2025, 9, 30, 16, 15, 0, 0, time.UTC)

func vatDeviations(n int, country func(i int) string, hotel func(i int) string, rate func(i int) string) []plan.Deviation {
	devs := make([]plan.Deviation, 0, n)
	for i := range n {
		devs = append(devs, plan.Deviation{
			HotelCode: hotel(i),
			RateCode:  rate(i),
			Country:   country(i),
			Field:     plan.FieldVAT,
			Current:   "Without",
			Standard:  "Reduced",
		})
	}

	return devs
}

func constant(v string) func(int) string {
	return func(int) string { return v }
}

func indexed(prefix string) func(int) string {
	return func(i int) string { return prefix + string(rune('1'+i)) }
}

func TestGenerate_Threshold(t *testing.T) {
	t.Parallel()

	t.Run("below threshold yields nothing", func(t *testing.T) {
		t.Parallel()

		devs := vatDeviations(2, constant("UK"), indexed("H"), constant("R1"))

		assert.Empty(t, suggest.Generate(devs, 3, testNow))
	})

	t.Run("at threshold yields one", func(t *testing.T) {
		t.Parallel()

		devs := vatDeviations(3, constant("UK"), indexed("H"), constant("R1"))

		assert.Len(t, suggest.Generate(devs, 3, testNow), 1)
	})

	t.Run("zero uses default threshold", func(t *testing.T) {
		t.Parallel()

		devs := vatDeviations(suggest.DefaultMinOccurrences-1, constant("UK"), indexed("H"), constant("R1"))
		assert.Empty(t, suggest.Generate(devs, 0, testNow))

		devs = vatDeviations(suggest.DefaultMinOccurrences, constant("UK"), indexed("H"), constant("R1"))
		assert.Len(t, suggest.Generate(devs, 0, testNow), 1)
	})
}

func TestGenerate_CountryPattern(t *testing.T) {
	t.Parallel()

	// Four hotels, one country, one rate.
	devs := vatDeviations(4, constant("UK"), indexed("H"), constant("R1"))

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, rule.CountryPattern, s.Rule.Type)
	assert.Equal(t, "UK", s.Rule.Country)
	assert.Empty(t, s.Rule.HotelCode)
	assert.Empty(t, s.Rule.RateCode)
	assert.Equal(t, "VAT", s.Rule.Field)
	assert.Equal(t, "Without", s.Rule.CurrentValue)
	assert.Equal(t, "Reduced", s.Rule.StandardValue)
	assert.Equal(t, rule.PriorityMedium, s.Rule.Priority)
	assert.Equal(t, rule.StatusInactive, s.Rule.Status)
	assert.Equal(t, "[TO_BE_APPROVED]", s.Rule.ApprovedBy)
	assert.Equal(t, "2025-09-30", s.Rule.DateAdded)
	assert.Equal(t, 4, s.Occurrences)
	assert.Equal(t, "All UK hotels with VAT deviation (4 instances)", s.Rule.Reason)
}

func TestGenerate_CountryRatePattern(t *testing.T) {
	t.Parallel()

	// Four hotels, one country, two rates.
	devs := vatDeviations(4, constant("UK"), indexed("H"), func(i int) string {
		if i%2 == 0 {
			return "R1"
		}

		return "R2"
	})

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, rule.CountryRatePattern, s.Rule.Type)
	assert.Equal(t, "UK", s.Rule.Country)
	assert.Equal(t, "R1,R2", s.Rule.RateCode)
	assert.Equal(t, rule.PriorityMedium, s.Rule.Priority)
	assert.Equal(t, "Multiple UK hotels with VAT deviation (4 instances)", s.Rule.Reason)
}

func TestGenerate_HotelRatePattern(t *testing.T) {
	t.Parallel()

	// Two hotels across two countries with two rates: falls through the
	// country branch into the hotel+rate branch.
	devs := []plan.Deviation{
		{HotelCode: "H1", RateCode: "R1", Country: "UK", Field: plan.FieldVAT, Current: "Without", Standard: "Reduced"},
		{HotelCode: "H1", RateCode: "R2", Country: "UK", Field: plan.FieldVAT, Current: "Without", Standard: "Reduced"},
		{HotelCode: "H2", RateCode: "R1", Country: "FR", Field: plan.FieldVAT, Current: "Without", Standard: "Reduced"},
		{HotelCode: "H2", RateCode: "R2", Country: "FR", Field: plan.FieldVAT, Current: "Without", Standard: "Reduced"},
	}

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, rule.HotelRatePattern, s.Rule.Type)
	assert.Equal(t, "H1,H2", s.Rule.HotelCode)
	assert.Equal(t, "R1,R2", s.Rule.RateCode)
	assert.Empty(t, s.Rule.Country)
	assert.Equal(t, "Specific hotels with specific rates VAT deviation (4 instances)", s.Rule.Reason)
}

func TestGenerate_NoApplicableBranch(t *testing.T) {
	t.Parallel()

	// Six hotels across two countries on a single rate: neither branch fits.
	devs := vatDeviations(6, func(i int) string {
		if i < 3 {
			return "UK"
		}

		return "FR"
	}, indexed("H"), constant("R1"))

	assert.Empty(t, suggest.Generate(devs, 3, testNow))
}

func TestGenerate_HighPriorityAboveTen(t *testing.T) {
	t.Parallel()

	devs := vatDeviations(11, constant("UK"), func(i int) string {
		if i%2 == 0 {
			return "H1"
		}

		return "H2"
	}, constant("R1"))

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 1)
	assert.Equal(t, rule.CountryPattern, got[0].Rule.Type)
	assert.Equal(t, rule.PriorityHigh, got[0].Rule.Priority)
	assert.Equal(t, 11, got[0].Occurrences)
}

func TestGenerate_GroupsByPattern(t *testing.T) {
	t.Parallel()

	// Two distinct patterns on the same field; only one reaches threshold.
	devs := vatDeviations(3, constant("UK"), indexed("H"), constant("R1"))
	devs = append(devs, plan.Deviation{
		HotelCode: "H9", RateCode: "R9", Country: "UK",
		Field: plan.FieldVAT, Current: "Normal", Standard: "Reduced",
	})

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 1)
	assert.Equal(t, "Without", got[0].Rule.CurrentValue)
}

func TestGenerate_DeterministicOrder(t *testing.T) {
	t.Parallel()

	subDevs := func() []plan.Deviation {
		devs := make([]plan.Deviation, 0, 12)
		for i := range 12 {
			devs = append(devs, plan.Deviation{
				HotelCode: "H" + string(rune('1'+i%4)),
				RateCode:  "R1",
				Country:   "DE",
				Field:     plan.FieldSubaccount,
				Current:   "108000A",
				Standard:  "108000",
			})
		}

		return devs
	}

	devs := append(subDevs(), vatDeviations(4, constant("UK"), indexed("H"), constant("R1"))...)

	got := suggest.Generate(devs, 3, testNow)

	require.Len(t, got, 2)
	// High priority (12 occurrences) sorts first.
	assert.Equal(t, rule.PriorityHigh, got[0].Rule.Priority)
	assert.Equal(t, "Subaccount", got[0].Rule.Field)
	assert.Equal(t, rule.PriorityMedium, got[1].Rule.Priority)

	// Same input, same order.
	again := suggest.Generate(devs, 3, testNow)
	assert.Equal(t, got, again)
}
