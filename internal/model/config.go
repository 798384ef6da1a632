package model

import "time"

// Config holds all qextract settings. Field tags serve viper (mapstructure)
// and `qextract config show|init` (yaml).
type Config struct {
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Patterns     PatternsConfig     `yaml:"patterns" mapstructure:"patterns"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// ExtractionConfig mirrors the options of a single extraction run
type ExtractionConfig struct {
	MinQuestionLength int    `yaml:"min_question_length" mapstructure:"min_question_length"`
	MaxQuestionLength int    `yaml:"max_question_length" mapstructure:"max_question_length"`
	ValidationLevel   string `yaml:"validation_level" mapstructure:"validation_level"` // basic, standard, strict
	ForceStrategy     string `yaml:"force_strategy" mapstructure:"force_strategy"`     // empty = classifier decides
}

// PatternsConfig points at an optional pattern library file
type PatternsConfig struct {
	File string `yaml:"file" mapstructure:"file"` // YAML definition; empty = built-in library
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`
	DocTimeout   time.Duration `yaml:"doc_timeout" mapstructure:"doc_timeout"`     // Per-document wall-clock ceiling (0 = none)
	BatchTimeout time.Duration `yaml:"batch_timeout" mapstructure:"batch_timeout"` // Whole batch
}

// RateLimitingConfig throttles document intake per source directory
type RateLimitingConfig struct {
	DocumentsPerSecond float64 `yaml:"documents_per_second" mapstructure:"documents_per_second"` // 0 = unlimited
	BurstSize          int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the extraction result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Pretty  bool   `yaml:"pretty" mapstructure:"pretty"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MinQuestionLength: 10,
			MaxQuestionLength: 1000,
			ValidationLevel:   "standard",
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			DocTimeout:   5 * time.Second,
			BatchTimeout: 10 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			DocumentsPerSecond: 0,
			BurstSize:          5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Dir:    "./qextract-results",
			Pretty: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
