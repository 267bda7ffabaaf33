// Package config provides the audit configuration for the compliance core:
// policy membership lists, the suggestion threshold, and the exception
// ruleset, loaded from YAML and validated against an embedded JSON schema.
package config
