package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvConfigPath names the environment variable holding an explicit config path.
const EnvConfigPath = "RELIC_CONFIG"

// Config holds all configuration options for relic.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Level bands per metric
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Risk score weights
	Risk RiskConfig `koanf:"risk" toml:"risk"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	Logging LoggingConfig `koanf:"logging" toml:"logging"`
	Server  ServerConfig  `koanf:"server" toml:"server"`
}

// AnalysisConfig bounds batch analysis.
type AnalysisConfig struct {
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size" validate:"gt=0"`
	Workers     int   `koanf:"workers" toml:"workers" validate:"gte=0"` // 0 = 2x NumCPU
}

// Band holds the three cut points separating low, medium, high and critical.
// For ascending metrics a value <= Low is low; for maintainability (where
// higher is better) a value >= Low is low.
type Band struct {
	Low    float64 `koanf:"low" toml:"low" validate:"gte=0"`
	Medium float64 `koanf:"medium" toml:"medium" validate:"gte=0"`
	High   float64 `koanf:"high" toml:"high" validate:"gte=0"`
}

// ThresholdConfig defines level bands per metric.
type ThresholdConfig struct {
	Cyclomatic      Band `koanf:"cyclomatic" toml:"cyclomatic"`
	Nesting         Band `koanf:"nesting" toml:"nesting"`
	Maintainability Band `koanf:"maintainability" toml:"maintainability"`
}

// RiskConfig weights the components of the risk score.
type RiskConfig struct {
	Cyclomatic      float64 `koanf:"cyclomatic" toml:"cyclomatic" validate:"gte=0"`
	Cognitive       float64 `koanf:"cognitive" toml:"cognitive" validate:"gte=0"`
	Nesting         float64 `koanf:"nesting" toml:"nesting" validate:"gte=0"`
	Maintainability float64 `koanf:"maintainability" toml:"maintainability" validate:"gte=0"`
}

// Total is the sum of all weights.
func (r RiskConfig) Total() float64 {
	return r.Cyclomatic + r.Cognitive + r.Nesting + r.Maintainability
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled       bool   `koanf:"enabled" toml:"enabled"`
	Dir           string `koanf:"dir" toml:"dir"`
	TTL           int    `koanf:"ttl" toml:"ttl" validate:"gte=0"` // TTL in hours
	MemoryEntries int    `koanf:"memory_entries" toml:"memory_entries" validate:"gte=0"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" validate:"oneof=text markdown json toon yaml"`
	Color  bool   `koanf:"color" toml:"color"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `koanf:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" toml:"format" validate:"oneof=text json"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr" toml:"addr" validate:"required"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize: 1 << 20,
			Workers:     0,
		},
		Thresholds: ThresholdConfig{
			Cyclomatic:      Band{Low: 5, Medium: 10, High: 20},
			Nesting:         Band{Low: 2, Medium: 4, High: 6},
			Maintainability: Band{Low: 80, Medium: 60, High: 40},
		},
		Risk: RiskConfig{
			Cyclomatic:      35,
			Cognitive:       20,
			Nesting:         15,
			Maintainability: 30,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.bak",
				"*.orig",
				"*~",
			},
			Dirs: []string{
				".git",
				".svn",
				".relic",
				"blib",
				"local",
				"node_modules",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Dir:           ".relic/cache",
			TTL:           24,
			MemoryEntries: 1024,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

var validate = validator.New()

// Validate checks field constraints and band ordering.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var errs []error
	if !ascending(c.Thresholds.Cyclomatic) {
		errs = append(errs, errors.New("thresholds.cyclomatic must satisfy low <= medium <= high"))
	}
	if !ascending(c.Thresholds.Nesting) {
		errs = append(errs, errors.New("thresholds.nesting must satisfy low <= medium <= high"))
	}
	if m := c.Thresholds.Maintainability; !(m.Low >= m.Medium && m.Medium >= m.High) || m.Low > 100 {
		errs = append(errs, errors.New("thresholds.maintainability must satisfy 100 >= low >= medium >= high"))
	}
	if c.Risk.Total() <= 0 {
		errs = append(errs, errors.New("risk weights must not all be zero"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func ascending(b Band) bool {
	return b.Low <= b.Medium && b.Medium <= b.High
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadResult is the effective configuration and where it came from.
type LoadResult struct {
	Config *Config
	Source string // empty when defaults were used
}

type loadOptions struct {
	path    string
	baseDir string
}

// LoadOption customizes LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads an explicit file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) { o.path = path }
}

// WithBaseDir searches for config files relative to dir instead of ".".
func WithBaseDir(dir string) LoadOption {
	return func(o *loadOptions) { o.baseDir = dir }
}

// configNames are searched in order within each search directory.
var configNames = []string{
	"relic.toml",
	"relic.yaml",
	"relic.yml",
	"relic.json",
	".relic.toml",
	".relic.yaml",
	".relic.yml",
	".relic.json",
}

// LoadConfig resolves the configuration: an explicit path, then
// $RELIC_CONFIG, then the standard file names in . and .relic/.
// An explicit path that does not exist is an error; finding nothing during
// the search yields the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{baseDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: path}, nil
	}

	if found := Find(o.baseDir); found != "" {
		cfg, err := Load(found)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: found}, nil
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// Find returns the first standard config file under dir, or "".
func Find(dir string) string {
	for _, sub := range []string{".", ".relic"} {
		for _, name := range configNames {
			path := filepath.Join(dir, sub, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault returns the resolved config, falling back to defaults on error.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	sep := string(filepath.Separator)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, sep+dir+sep) || strings.HasPrefix(path, dir+sep) || path == dir {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// ShouldExcludeDir reports whether a directory name is excluded.
func (c *Config) ShouldExcludeDir(name string) bool {
	for _, dir := range c.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}
