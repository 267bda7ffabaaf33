package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/check"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/plan"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/rule"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/suggest"
	"github.com/alexwiepking-a11y/CRPM-check/pkg/yaml"
)

//go:generate go run ../../internal/schemagen/main.go -o config.v1beta1.json

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	ValidAPIVersions = []string{
		"crpm.alexwiepking.dev/v1beta1",
	}
	ValidKinds = []string{
		"Configuration",
	}

	DefaultValidator = yaml.MustNewValidator("/config.v1beta1.json", schemaJSON)
)

// SuggestionsConfig tunes the exception rule suggestion generator.
type SuggestionsConfig struct {
	// MinOccurrences is the number of times a deviation pattern must recur
	// before a rule is suggested for it.
	MinOccurrences int `json:"minOccurrences,omitempty" jsonschema:"title=Minimum Occurrences"`
}

// EnsureDefaults initializes unset fields to their default values.
func (c *SuggestionsConfig) EnsureDefaults() {
	if c.MinOccurrences <= 0 {
		c.MinOccurrences = suggest.DefaultMinOccurrences
	}
}

// Config is the audit configuration document: policy membership lists, the
// suggestion threshold, and the exception ruleset in its authored order.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	Suggestions *SuggestionsConfig `json:"suggestions,omitempty" jsonschema:"title=Suggestions"`
	// CityTaxHotels lists the hotels enrolled in the city tax policy. City
	// tax is only checked for these hotels.
	CityTaxHotels []string `json:"cityTaxHotels,omitempty" jsonschema:"title=City Tax Hotels"`
	// ExcludedHotels lists hotels dropped from analysis entirely.
	ExcludedHotels []string `json:"excludedHotels,omitempty" jsonschema:"title=Excluded Hotels"`
	// Rules is the exception ruleset. Order is matching precedence.
	Rules []rule.Rule `json:"rules,omitempty" jsonschema:"title=Exception Rules"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
}

func NewConfig() *Config {
	c := &Config{
		APIVersion: "crpm.alexwiepking.dev/v1beta1",
		Kind:       "Configuration",
	}
	c.EnsureDefaults()

	return c
}

// DefaultConfig loads the embedded default configuration.
func DefaultConfig() (*Config, error) {
	return NewConfigLoaderFromBytes(defaultConfigYAML).Load()
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Suggestions == nil {
		c.Suggestions = &SuggestionsConfig{}
	}

	c.Suggestions.EnsureDefaults()
}

// Validate checks requirements that can't be represented in the schema,
// compiling every rule so an unrecognized kind fails at load time.
func (c *Config) Validate() error {
	for i := range c.Rules {
		if err := c.Rules[i].Compile(); err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}
	}

	return nil
}

// Membership returns the city tax policy membership predicate.
func (c *Config) Membership() plan.Membership {
	return plan.MemberOf(c.CityTaxHotels)
}

// ActiveRules returns the active rules in authored order.
func (c *Config) ActiveRules() []rule.Rule {
	return rule.FilterActive(c.Rules)
}

// NewMatcher compiles the configured ruleset into a [rule.Matcher].
func (c *Config) NewMatcher() (*rule.Matcher, error) {
	m, err := rule.NewMatcher(c.Rules)
	if err != nil {
		return nil, fmt.Errorf("compile ruleset: %w", err)
	}

	return m, nil
}

// NewChecker builds a [check.Checker] over the given standards, wired with
// the configured ruleset, policy memberships, and suggestion threshold.
// Additional options override the configured ones.
func (c *Config) NewChecker(standards *plan.StandardSet, opts ...check.Option) (*check.Checker, error) {
	c.EnsureDefaults()

	m, err := c.NewMatcher()
	if err != nil {
		return nil, err
	}

	base := []check.Option{
		check.WithMembership(c.Membership()),
		check.WithExcludedHotels(c.ExcludedHotels),
		check.WithMinOccurrences(c.Suggestions.MinOccurrences),
	}

	return check.New(standards, m, append(base, opts...)...), nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	for _, version := range ValidAPIVersions {
		apiVersion.OneOf = append(apiVersion.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: version,
			Title: "API Version",
		})
	}

	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	for _, kindValue := range ValidKinds {
		kind.OneOf = append(kind.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: kindValue,
			Title: "Kind",
		})
	}

	_, _ = jss.Properties.Set("kind", kind)
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b := &bytes.Buffer{}
	enc := yaml.NewEncoder(b)
	err := enc.Encode(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

func (c Config) Write(path string) error {
	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		if err == nil && pathInfo.Mode().IsRegular() {
			return nil // Config already exists.
		}
		if pathInfo.IsDir() {
			return fmt.Errorf("%s: path is a directory", path)
		}

		return fmt.Errorf("%s: unknown file state", path)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, b, 0o600)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

type ConfigValidator interface {
	Validate(data any) error
}

type ConfigLoader struct {
	cv   ConfigValidator
	data []byte
}

func NewConfigLoaderFromBytes(data []byte, opts ...ConfigLoaderOpt) *ConfigLoader {
	cl := &ConfigLoader{
		cv:   DefaultValidator,
		data: data,
	}
	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

func NewConfigLoaderFromFile(path string, opts ...ConfigLoaderOpt) (*ConfigLoader, error) {
	data, err := readConfig(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return NewConfigLoaderFromBytes(data, opts...), nil
}

type ConfigLoaderOpt func(*ConfigLoader)

func WithConfigValidator(cv ConfigValidator) ConfigLoaderOpt {
	return func(cl *ConfigLoader) {
		cl.cv = cv
	}
}

// Validate validates configuration data with [ConfigValidator] without
// loading it into a [Config] struct.
func (cl *ConfigLoader) Validate() error {
	// Decode into interface{} for initial validation.
	var anyConfig any

	dec := yaml.NewDecoder(bytes.NewReader(cl.data))
	err := dec.Decode(&anyConfig)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	err = cl.cv.Validate(anyConfig)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

func (cl *ConfigLoader) Load() (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(cl.data))
	err := dec.Decode(c)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	c.EnsureDefaults()

	// Run Go validation on the config (for requirements that can't be
	// represented in the schema).
	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func GetPath() string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, "crpm", "config.yaml")
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", "crpm", "config.yaml")
	}

	return filepath.Join(os.TempDir(), "crpm", "config.yaml")
}

func readConfig(path string) ([]byte, error) {
	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		if err == nil && pathInfo.IsDir() {
			return nil, fmt.Errorf("%s: path is a directory", path)
		}
		if err == nil && !pathInfo.Mode().IsRegular() {
			return nil, fmt.Errorf("%s: unknown file state", path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}
