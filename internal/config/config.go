package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Supported synthesis providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderNone      = "none"
)

// Config holds the talentdex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Match     MatchConfig     `yaml:"match"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port             int `yaml:"port"`
	ReadTimeoutSec   int `yaml:"read_timeout_sec"`
	WriteTimeoutSec  int `yaml:"write_timeout_sec"`
	ShutdownSec      int `yaml:"shutdown_timeout_sec"`
	SearchTimeoutSec int `yaml:"search_timeout_sec"`
}

// DatabaseConfig holds vector store settings.
// Addrs and Password apply to valkey/redis, DSN to postgres.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, postgres (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	MaxOpenConns     int      `yaml:"max_open_conns"`
	KeyPrefix        string   `yaml:"key_prefix"`      // hashes live at <key_prefix>candidate:<id>
	Index            string   `yaml:"index"`           // FT index name for valkey/redis
	SearchFunction   string   `yaml:"search_function"` // SQL function name for postgres
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Routine returns the search routine for the configured driver:
// the FT index for valkey/redis, the SQL function for postgres.
func (d DatabaseConfig) Routine() string {
	if d.Driver == DriverPostgres {
		return d.SearchFunction
	}
	return d.Index
}

// EmbeddingConfig holds the query embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // label for metrics and logs
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// SynthesisConfig holds justification provider settings.
type SynthesisConfig struct {
	Provider     string   `yaml:"provider"` // openai, anthropic, gemini, none (default: openai)
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	Model        string   `yaml:"model"`
	MaxTokens    int      `yaml:"max_tokens"`
	Temperature  *float32 `yaml:"temperature"`
	Concurrency  int      `yaml:"concurrency"`
	SystemPrompt string   `yaml:"system_prompt"`
}

// MatchConfig holds the two-pass retrieval policy.
type MatchConfig struct {
	PrimaryThreshold  *float64 `yaml:"primary_threshold"`
	FallbackThreshold *float64 `yaml:"fallback_threshold"`
	Limit             int      `yaml:"limit"`
}

// Primary returns the primary threshold, 0.3 when unset.
func (m MatchConfig) Primary() float64 {
	if m.PrimaryThreshold == nil {
		return 0.3
	}
	return *m.PrimaryThreshold
}

// Fallback returns the fallback threshold, 0 when unset.
func (m MatchConfig) Fallback() float64 {
	if m.FallbackThreshold == nil {
		return 0
	}
	return *m.FallbackThreshold
}

// Temp returns the sampling temperature, 0.7 when unset.
func (s SynthesisConfig) Temp() float32 {
	if s.Temperature == nil {
		return 0.7
	}
	return *s.Temperature
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.SearchTimeoutSec <= 0 {
		c.HTTP.SearchTimeoutSec = 30
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverValkey
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "talentdex:"
	}
	if c.Database.Index == "" {
		c.Database.Index = c.Database.KeyPrefix + "candidates:idx"
	}
	if c.Database.SearchFunction == "" {
		c.Database.SearchFunction = "match_candidates"
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}

	if c.Synthesis.Provider == "" {
		c.Synthesis.Provider = ProviderOpenAI
	}
	if c.Synthesis.MaxTokens <= 0 {
		c.Synthesis.MaxTokens = 150
	}
	if c.Synthesis.Temperature == nil {
		t := float32(0.7)
		c.Synthesis.Temperature = &t
	}
	if c.Synthesis.Concurrency <= 0 {
		c.Synthesis.Concurrency = 5
	}

	if c.Match.PrimaryThreshold == nil {
		p := 0.3
		c.Match.PrimaryThreshold = &p
	}
	if c.Match.FallbackThreshold == nil {
		f := 0.0
		c.Match.FallbackThreshold = &f
	}
	if c.Match.Limit == 0 {
		c.Match.Limit = 5
	}
}

// Validate checks the configuration for correctness.
// Missing API keys are not rejected here: they surface per request as configuration errors.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	return c.ValidatePipeline()
}

// ValidatePipeline checks the sections the matching pipeline needs, leaving
// out the HTTP server. Embedded callers without a listener use it directly.
func (c *Config) ValidatePipeline() error {
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be one of valkey, redis, postgres, got %q", c.Database.Driver)
	}

	switch c.Synthesis.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf(
			"synthesis.provider must be one of openai, anthropic, gemini, none, got %q",
			c.Synthesis.Provider,
		)
	}
	if t := c.Synthesis.Temp(); t < 0 || t > 2 {
		return fmt.Errorf("synthesis.temperature must be between 0 and 2, got %g", t)
	}

	primary, fallback := c.Match.Primary(), c.Match.Fallback()
	if primary < 0 || primary > 1 {
		return fmt.Errorf("match.primary_threshold must be between 0 and 1, got %g", primary)
	}
	if fallback < 0 || fallback > 1 {
		return fmt.Errorf("match.fallback_threshold must be between 0 and 1, got %g", fallback)
	}
	if fallback > primary {
		return fmt.Errorf("match.fallback_threshold (%g) must not exceed match.primary_threshold (%g)", fallback, primary)
	}
	if c.Match.Limit <= 0 {
		return fmt.Errorf("match.limit must be positive, got %d", c.Match.Limit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and `go run` from subdirectories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
