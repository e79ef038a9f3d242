package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultQuery is the retrieval query used to rank chunks before pattern matching.
const DefaultQuery = "policy number claimant name date of loss amount claimed claim description"

// Config is the complete claimlens configuration.
type Config struct {
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Summary      SummaryConfig      `yaml:"summary" mapstructure:"summary"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	S3           S3Config           `yaml:"s3" mapstructure:"s3"`
	Source       SourceConfig       `yaml:"source" mapstructure:"source"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
}

// ExtractConfig tunes the rule-based extractor.
type ExtractConfig struct {
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	TopK         int    `yaml:"top_k" mapstructure:"top_k"`
	Query        string `yaml:"query" mapstructure:"query"`
	Ranker       string `yaml:"ranker" mapstructure:"ranker"` // tfidf | none
	Supplemental bool   `yaml:"supplemental" mapstructure:"supplemental"`
}

// SummaryConfig controls the local extractive summary.
type SummaryConfig struct {
	Enabled   bool `yaml:"enabled" mapstructure:"enabled"`
	Sentences int  `yaml:"sentences" mapstructure:"sentences"`
}

// LLMConfig configures the optional hosted-model path.
type LLMConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // "" disables
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Retries    int           `yaml:"retries" mapstructure:"retries"`
	Backoff    time.Duration `yaml:"backoff" mapstructure:"backoff"`
	Summarize  bool          `yaml:"summarize" mapstructure:"summarize"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// RateLimitingConfig throttles calls to the hosted model.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls report caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// S3Config points at an S3-compatible bucket holding OCR output.
type S3Config struct {
	Endpoint        string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	Region          string `yaml:"region" mapstructure:"region"`
	Bucket          string `yaml:"bucket,omitempty" mapstructure:"bucket"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style" mapstructure:"use_path_style"`
}

// SourceConfig limits document reads.
type SourceConfig struct {
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// ConcurrencyConfig sizes the batch worker pool.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Color   bool `yaml:"color" mapstructure:"color"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cacheDir := ".claimlens-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".claimlens", "cache")
	}

	return &Config{
		Extract: ExtractConfig{
			ChunkSize:    1000,
			TopK:         6,
			Query:        DefaultQuery,
			Ranker:       "tfidf",
			Supplemental: true,
		},
		Summary: SummaryConfig{
			Enabled:   true,
			Sentences: 3,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 1000,
			Retries:   3,
			Backoff:   1200 * time.Millisecond,
			Summarize: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		S3: S3Config{
			Region:       "us-east-1",
			UsePathStyle: true,
		},
		Source: SourceConfig{
			MaxBytes: 10 << 20,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Color: true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 5 << 20,
		},
	}
}
