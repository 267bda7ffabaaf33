// Package rule models approved exception rules and resolves deviations
// against them.
//
// Seven scope kinds exist, from a single hotel up to every hotel in a
// country. Each kind compiles to its own scope predicate, so dispatch is
// exhaustive over the known kinds and an unrecognized kind fails loudly at
// compile time instead of silently matching nothing.
package rule
