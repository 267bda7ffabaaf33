// Package check detects field-level deviations between rate plans and their
// hotel standards, resolves them against the approved exception ruleset, and
// assembles the needs-fixing, accepted, and suggestion reports.
package check
