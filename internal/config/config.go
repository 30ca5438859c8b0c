package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration of every resumatch service.
// Each subcommand reads the shared sections plus its own.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
	Rank      RankingConfig   `yaml:"rank"`
	Analyze   RankingConfig   `yaml:"analyze"`
	Interview InterviewConfig `yaml:"interview"`
	Proxy     ProxyConfig     `yaml:"proxy"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// HTTPConfig holds HTTP server settings shared by all services.
type HTTPConfig struct {
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	HealthCheckSec  int   `yaml:"health_check_timeout_sec"` // per-check bound on /health
	MaxUploadMB     int64 `yaml:"max_upload_mb"`
	// StrictStatus returns 4xx/5xx for request-level errors instead of HTTP 200 error payloads.
	StrictStatus bool `yaml:"strict_status"`
}

// RankingConfig holds one ranking service variant.
type RankingConfig struct {
	Port      int             `yaml:"port"`
	Embedding EmbeddingConfig `yaml:"embedding"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // tei (default), fastembed, openai
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Pooling   string `yaml:"pooling"` // mean (default), cls
	CacheDir  string `yaml:"cache_dir"`
	MaxLength int    `yaml:"max_length"`
}

// InterviewConfig holds the interview analyzer service.
type InterviewConfig struct {
	Port       int              `yaml:"port"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// SummarizerConfig selects and configures the generation provider.
type SummarizerConfig struct {
	Provider        string `yaml:"provider"` // openai (default), gemini
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	TaskPrefix      string `yaml:"task_prefix"`
	MaxInputChars   int    `yaml:"max_input_chars"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	Seed            int    `yaml:"seed"`
}

// ProxyConfig holds the request-forwarding proxy.
type ProxyConfig struct {
	Port       int    `yaml:"port"`
	TargetURL  string `yaml:"target_url"`
	TimeoutSec int    `yaml:"timeout_sec"` // 0 = no timeout
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

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.HealthCheckSec <= 0 {
		c.HTTP.HealthCheckSec = 5
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 32
	}
	if c.CORS.AllowedOrigin == "" {
		c.CORS.AllowedOrigin = "*"
	}

	if c.Rank.Port <= 0 {
		c.Rank.Port = 5002
	}
	c.Rank.Embedding.applyDefaults("Shushant/ApplicantTrackingSystemBERT", "mean")

	if c.Analyze.Port <= 0 {
		c.Analyze.Port = 5010
	}
	c.Analyze.Embedding.applyDefaults("bert-base-uncased", "cls")

	if c.Interview.Port <= 0 {
		c.Interview.Port = 5003
	}
	s := &c.Interview.Summarizer
	if s.Provider == "" {
		s.Provider = "openai"
	}
	if s.TaskPrefix == "" {
		s.TaskPrefix = "summarize: "
	}
	if s.MaxInputChars <= 0 {
		s.MaxInputChars = 2048
	}
	if s.MaxOutputTokens <= 0 {
		s.MaxOutputTokens = 100
	}

	if c.Proxy.Port <= 0 {
		c.Proxy.Port = 5005
	}
	if c.Proxy.TargetURL == "" {
		c.Proxy.TargetURL = "http://localhost:5002/rank-resumes"
	}
}

func (e *EmbeddingConfig) applyDefaults(model, pooling string) {
	if e.Provider == "" {
		e.Provider = "tei"
	}
	if e.Provider == "tei" && e.BaseURL == "" {
		e.BaseURL = "http://localhost:8080"
	}
	if e.Model == "" {
		e.Model = model
	}
	if e.Pooling == "" {
		e.Pooling = pooling
	}
	if e.MaxLength <= 0 {
		e.MaxLength = 512
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	ports := map[string]int{
		"rank.port":      c.Rank.Port,
		"analyze.port":   c.Analyze.Port,
		"interview.port": c.Interview.Port,
		"proxy.port":     c.Proxy.Port,
	}
	for name, p := range ports {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535, got %d", name, p)
		}
	}

	if err := c.Rank.Embedding.validate("rank"); err != nil {
		return err
	}
	if err := c.Analyze.Embedding.validate("analyze"); err != nil {
		return err
	}

	switch c.Interview.Summarizer.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("interview.summarizer.provider must be \"openai\" or \"gemini\", got %q",
			c.Interview.Summarizer.Provider)
	}

	u, err := url.Parse(c.Proxy.TargetURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("proxy.target_url must be an absolute URL, got %q", c.Proxy.TargetURL)
	}
	if c.Proxy.TimeoutSec < 0 {
		return fmt.Errorf("proxy.timeout_sec must not be negative, got %d", c.Proxy.TimeoutSec)
	}
	return nil
}

func (e *EmbeddingConfig) validate(section string) error {
	switch e.Provider {
	case "tei":
		if e.BaseURL == "" {
			return fmt.Errorf("%s.embedding.base_url is required for the tei provider", section)
		}
	case "fastembed", "openai":
	default:
		return fmt.Errorf("%s.embedding.provider must be \"tei\", \"fastembed\" or \"openai\", got %q",
			section, e.Provider)
	}
	switch e.Pooling {
	case "mean", "cls":
	default:
		return fmt.Errorf("%s.embedding.pooling must be \"mean\" or \"cls\", got %q", section, e.Pooling)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
