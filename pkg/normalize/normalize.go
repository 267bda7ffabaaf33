// Package normalize canonicalizes raw field values so that downstream
// comparisons are well-defined.
//
// Source systems encode boolean-ish fields in many shapes ("TRUE", "1.0",
// "y", empty cells). Everything funnels into a tri-state value before any
// comparison happens.
package normalize

import "strings"

// Tristate is the canonical form of a boolean-ish field value.
type Tristate string

const (
	Yes     Tristate = "Yes"
	No      Tristate = "No"
	Unknown Tristate = "Unknown"
)

var (
	yesTokens = map[string]struct{}{
		"true": {}, "1": {}, "1.0": {}, "yes": {}, "y": {},
	}
	noTokens = map[string]struct{}{
		"false": {}, "0": {}, "0.0": {}, "no": {}, "n": {}, "nan": {}, "none": {}, "": {},
	}
)

// Bool converts a raw value to its canonical [Tristate] form.
//
// Input is trimmed and compared case-insensitively. Unrecognized values
// degrade to [Unknown] rather than erroring; the function is total. It is
// also idempotent: the canonical strings map back to themselves.
func Bool(value string) Tristate {
	v := strings.ToLower(strings.TrimSpace(value))
	if _, ok := yesTokens[v]; ok {
		return Yes
	}
	if _, ok := noTokens[v]; ok {
		return No
	}

	return Unknown
}
