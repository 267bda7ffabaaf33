// Package plan defines the rate plan compliance domain model: monitored
// fields with their per-field comparison semantics, rate plan records, hotel
// standards, and field-level deviations.
package plan
