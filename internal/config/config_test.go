package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.HealthCheckSec != 5 {
		t.Errorf("expected HealthCheckSec=5, got %d", cfg.HTTP.HealthCheckSec)
	}
	if cfg.HTTP.MaxUploadMB != 32 {
		t.Errorf("expected MaxUploadMB=32, got %d", cfg.HTTP.MaxUploadMB)
	}
	if cfg.CORS.AllowedOrigin != "*" {
		t.Errorf("expected AllowedOrigin='*', got %q", cfg.CORS.AllowedOrigin)
	}
	if cfg.Rank.Port != 5002 || cfg.Analyze.Port != 5010 || cfg.Interview.Port != 5003 || cfg.Proxy.Port != 5005 {
		t.Errorf("unexpected default ports: rank=%d analyze=%d interview=%d proxy=%d",
			cfg.Rank.Port, cfg.Analyze.Port, cfg.Interview.Port, cfg.Proxy.Port)
	}
	if cfg.Rank.Embedding.Pooling != "mean" {
		t.Errorf("expected rank pooling=mean, got %q", cfg.Rank.Embedding.Pooling)
	}
	if cfg.Analyze.Embedding.Pooling != "cls" {
		t.Errorf("expected analyze pooling=cls, got %q", cfg.Analyze.Embedding.Pooling)
	}
	if cfg.Rank.Embedding.Provider != "tei" || cfg.Rank.Embedding.BaseURL == "" {
		t.Errorf("expected tei provider with default base url, got %+v", cfg.Rank.Embedding)
	}
	if cfg.Rank.Embedding.MaxLength != 512 {
		t.Errorf("expected MaxLength=512, got %d", cfg.Rank.Embedding.MaxLength)
	}
	if cfg.Interview.Summarizer.TaskPrefix != "summarize: " {
		t.Errorf("expected task prefix 'summarize: ', got %q", cfg.Interview.Summarizer.TaskPrefix)
	}
	if cfg.Interview.Summarizer.MaxOutputTokens != 100 {
		t.Errorf("expected MaxOutputTokens=100, got %d", cfg.Interview.Summarizer.MaxOutputTokens)
	}
	if cfg.Proxy.TargetURL != "http://localhost:5002/rank-resumes" {
		t.Errorf("unexpected proxy target %q", cfg.Proxy.TargetURL)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 6, ShutdownSec: 7},
		Rank: RankingConfig{
			Port:      9000,
			Embedding: EmbeddingConfig{Provider: "openai", Model: "m", Pooling: "cls"},
		},
		Proxy: ProxyConfig{TargetURL: "http://ranker:5002/rank-resumes"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 || cfg.HTTP.WriteTimeoutSec != 6 || cfg.HTTP.ShutdownSec != 7 {
		t.Errorf("timeouts overridden: %+v", cfg.HTTP)
	}
	if cfg.Rank.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.Rank.Port)
	}
	if cfg.Rank.Embedding.Pooling != "cls" || cfg.Rank.Embedding.Model != "m" {
		t.Errorf("embedding overridden: %+v", cfg.Rank.Embedding)
	}
	if cfg.Rank.Embedding.BaseURL != "" {
		t.Errorf("openai provider must not get the tei default url, got %q", cfg.Rank.Embedding.BaseURL)
	}
	if cfg.Proxy.TargetURL != "http://ranker:5002/rank-resumes" {
		t.Errorf("unexpected proxy target %q", cfg.Proxy.TargetURL)
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Proxy.Port = 70000 }, "proxy.port"},
		{"bad provider", func(c *Config) { c.Rank.Embedding.Provider = "torch" }, "rank.embedding.provider"},
		{"bad pooling", func(c *Config) { c.Analyze.Embedding.Pooling = "max" }, "analyze.embedding.pooling"},
		{"tei without url", func(c *Config) { c.Rank.Embedding.BaseURL = "" }, "rank.embedding.base_url"},
		{"bad summarizer", func(c *Config) { c.Interview.Summarizer.Provider = "t5" }, "interview.summarizer.provider"},
		{"relative target", func(c *Config) { c.Proxy.TargetURL = "/rank-resumes" }, "proxy.target_url"},
		{"negative timeout", func(c *Config) { c.Proxy.TimeoutSec = -1 }, "proxy.timeout_sec"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("RESUMATCH_TEST_TEI", "http://tei.internal:8080")

	data := []byte(`
rank:
  embedding:
    base_url: ${RESUMATCH_TEST_TEI}
proxy:
  target_url: ${RESUMATCH_TEST_UNSET:-http://ranker:5002/rank-resumes}
http:
  strict_status: true
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Rank.Embedding.BaseURL != "http://tei.internal:8080" {
		t.Errorf("expected expanded env var, got %q", cfg.Rank.Embedding.BaseURL)
	}
	if cfg.Proxy.TargetURL != "http://ranker:5002/rank-resumes" {
		t.Errorf("expected default value, got %q", cfg.Proxy.TargetURL)
	}
	if !cfg.HTTP.StrictStatus {
		t.Error("expected strict_status=true")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("rank: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
