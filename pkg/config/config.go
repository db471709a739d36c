package config

import (
	"bytes"
	_ "embed"
	encjson "encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/panbanda/gdcf/config.schema.json"

// Config holds all configuration options for gdcf.
type Config struct {
	// Directories skipped during discovery
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude" json:"exclude"`

	// Test code classification
	Tests TestsConfig `koanf:"tests" toml:"tests" yaml:"tests" json:"tests"`

	// Analysis tuning
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// ExcludeConfig defines excluded directories.
type ExcludeConfig struct {
	Dirs      []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
}

// TestsConfig replaces the default test path rule when either list is set.
// Dirs are relative to the scan root; Patterns are globs over the
// slash-separated path relative to the root.
type TestsConfig struct {
	Dirs     []string `koanf:"dirs" toml:"dirs" yaml:"dirs" json:"dirs"`
	Patterns []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
}

// AnalysisConfig controls classification.
type AnalysisConfig struct {
	// Names treated as engine callbacks in addition to the built-in list.
	ExtraCallbacks []string `koanf:"extra_callbacks" toml:"extra_callbacks" yaml:"extra_callbacks" json:"extra_callbacks"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, markdown, json, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Exclude: ExcludeConfig{
			Dirs:      []string{"**/addons"},
			Gitignore: false,
		},
		Tests: TestsConfig{
			Dirs:     []string{},
			Patterns: []string{},
		},
		Analysis: AnalysisConfig{
			ExtraCallbacks: []string{},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// configNames are searched in order in each search directory.
var configNames = []string{
	"gdcf.toml",
	"gdcf.yaml",
	"gdcf.yml",
	"gdcf.json",
	".gdcf.toml",
	".gdcf.yaml",
	".gdcf.yml",
	".gdcf.json",
}

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs replaces the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads the explicit file if given, else the first config file
// found in the search directories, else the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{"."}}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = Locate(o.dirs...)
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Locate returns the first config file present in dirs, or "".
func Locate(dirs ...string) string {
	for _, dir := range dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// Load loads configuration from a file over the defaults and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := validateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// ValidationError reports a config document that does not match the schema
// or carries invalid values.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
}

// validateRaw checks the parsed document against the embedded schema.
func validateRaw(raw map[string]any) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	// Round trip through JSON so parser-specific value types become the
	// plain types the validator expects.
	data, err := encjson.Marshal(raw)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	if err := schema.Validate(inst); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "markdown", "json", "toon":
	default:
		return &ValidationError{Err: fmt.Errorf("unknown output format %q", c.Output.Format)}
	}
	for _, p := range c.Tests.Patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			return &ValidationError{Err: fmt.Errorf("tests.patterns %q: %w", p, err)}
		}
	}
	return nil
}
