package plan

import (
	"fmt"
	"strings"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/normalize"
)

// Field identifies one monitored rate plan field.
type Field string

const (
	FieldSubaccount Field = "Subaccount"
	FieldVAT        Field = "VAT"
	FieldCityTax    Field = "CityTax"
)

// Fields returns the monitored fields in their fixed evaluation order.
// Downstream detail strings and priority inheritance depend on this order.
func Fields() []Field {
	return []Field{FieldSubaccount, FieldVAT, FieldCityTax}
}

// Label returns the human-readable name used in deviation detail strings.
func (f Field) Label() string {
	if f == FieldCityTax {
		return "City Tax"
	}

	return string(f)
}

// Equal reports whether a current value matches its standard under the
// field's comparison semantics. Subaccount compares trimmed and
// case-sensitive; VAT compares trimmed and case-insensitive; CityTax
// compares after tri-state normalization. The per-field casing split is
// observed production behavior and is kept as-is.
func (f Field) Equal(current, standard string) bool {
	switch f {
	case FieldSubaccount:
		return strings.TrimSpace(current) == strings.TrimSpace(standard)
	case FieldVAT:
		return strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(standard))
	case FieldCityTax:
		return normalize.Bool(current) == normalize.Bool(standard)
	}

	return false
}

// RatePlan is one monitored rate plan record. Immutable input; all values
// are carried as the source system provided them.
type RatePlan struct {
	HotelCode   string
	RateCode    string
	RateName    string
	Country     string
	Subaccount  string
	VATType     string
	CityTax     string
	ServiceType string
	ValidFrom   string
}

// FieldValue returns the plan's current value for a monitored field.
func (p RatePlan) FieldValue(f Field) string {
	switch f {
	case FieldSubaccount:
		return p.Subaccount
	case FieldVAT:
		return p.VATType
	case FieldCityTax:
		return p.CityTax
	}

	return ""
}

// Standard is the expected configuration for one hotel.
type Standard struct {
	HotelCode  string
	Subaccount string
	VAT        string
	CityTax    string
}

// FieldValue returns the standard value for a monitored field.
func (s Standard) FieldValue(f Field) string {
	switch f {
	case FieldSubaccount:
		return s.Subaccount
	case FieldVAT:
		return s.VAT
	case FieldCityTax:
		return s.CityTax
	}

	return ""
}

// StandardSet indexes standards by hotel code. At most one standard may
// exist per hotel; a rate plan whose hotel has no standard is not analyzable
// and must be excluded before detection.
type StandardSet struct {
	byHotel map[string]Standard
}

// NewStandardSet builds a [StandardSet], rejecting duplicate hotel codes.
func NewStandardSet(standards []Standard) (*StandardSet, error) {
	byHotel := make(map[string]Standard, len(standards))
	for _, s := range standards {
		if _, ok := byHotel[s.HotelCode]; ok {
			return nil, fmt.Errorf("duplicate standard for hotel %q", s.HotelCode)
		}

		byHotel[s.HotelCode] = s
	}

	return &StandardSet{byHotel: byHotel}, nil
}

// Lookup returns the standard for a hotel code, if one exists.
func (ss *StandardSet) Lookup(hotelCode string) (Standard, bool) {
	s, ok := ss.byHotel[hotelCode]

	return s, ok
}

// Len returns the number of standards in the set.
func (ss *StandardSet) Len() int {
	return len(ss.byHotel)
}

// Deviation is a single field-level disagreement between a rate plan and its
// hotel's standard. Derived and transient; never persisted by the core.
type Deviation struct {
	HotelCode string
	RateCode  string
	Country   string
	Field     Field
	Current   string
	Standard  string
}

// Detail renders the deviation as it appears in report detail strings.
func (d Deviation) Detail() string {
	return fmt.Sprintf("%s: '%s' → '%s'", d.Field.Label(), d.Current, d.Standard)
}

// Membership reports whether a hotel participates in some externally
// configured policy (e.g. city tax enrollment).
type Membership func(hotelCode string) bool

// MemberOf returns a [Membership] backed by a fixed list of hotel codes.
func MemberOf(hotelCodes []string) Membership {
	set := make(map[string]struct{}, len(hotelCodes))
	for _, c := range hotelCodes {
		set[strings.TrimSpace(c)] = struct{}{}
	}

	return func(hotelCode string) bool {
		_, ok := set[hotelCode]

		return ok
	}
}
