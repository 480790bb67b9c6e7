package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the CircleCI v2 API base URL.
	DefaultAPIURL = "https://circleci.com/api/v2"

	// DefaultTokenEnv is the environment variable holding the CircleCI
	// API token when none is set in the config file.
	DefaultTokenEnv = "CIRCLE_TOKEN"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultOutputDir is the default directory for report outputs.
	DefaultOutputDir = "./outputs"

	// DefaultRequestsPerMinute is the default CircleCI API rate limit.
	DefaultRequestsPerMinute = 300

	// DefaultArtifactPrefix selects the artifacts holding test reports.
	DefaultArtifactPrefix = "reports/"

	// DefaultSummarySuffix selects per-node pass/fail summary artifacts.
	DefaultSummarySuffix = "/summary_short.txt"

	// DefaultFailuresSuffix selects per-node failure-detail artifacts.
	DefaultFailuresSuffix = "/failures_line.txt"
)

// defaultJobPrefixes selects the workflow jobs whose artifacts carry test
// reports.
var defaultJobPrefixes = []string{"tests_", "examples_", "pipelines_"}

// Config is the root configuration for reportoor.
type Config struct {
	Global   GlobalConfig    `yaml:"global"`
	CircleCI CircleCIConfig  `yaml:"circleci"`
	Report   ReportConfig    `yaml:"report"`
	Upload   *UploadConfig   `yaml:"upload,omitempty"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
	API      *APIConfig      `yaml:"api,omitempty"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// CircleCIConfig contains CircleCI API access settings.
type CircleCIConfig struct {
	APIURL            string `yaml:"api_url"`
	Token             string `yaml:"token,omitempty"`
	TokenEnv          string `yaml:"token_env,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// ReportConfig contains report generation settings.
type ReportConfig struct {
	OutputDir   string `yaml:"output_dir"`
	OutputOwner string `yaml:"output_owner,omitempty"`

	JobPrefixes    []string `yaml:"job_prefixes,omitempty"`
	ArtifactPrefix string   `yaml:"artifact_prefix,omitempty"`
	SummarySuffix  string   `yaml:"summary_suffix,omitempty"`
	FailuresSuffix string   `yaml:"failures_suffix,omitempty"`
}

// UploadConfig contains remote storage settings for report outputs.
type UploadConfig struct {
	S3 *S3UploadConfig `yaml:"s3,omitempty"`
}

// S3UploadConfig contains S3-compatible storage settings.
type S3UploadConfig struct {
	Enabled         bool   `yaml:"enabled"`
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	StorageClass    string `yaml:"storage_class,omitempty"`
	ACL             string `yaml:"acl,omitempty"`
}

// DatabaseConfig contains index database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty"`
}

// APIConfig contains HTTP server settings for serving generated reports.
type APIConfig struct {
	Listen      string          `yaml:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// RateLimitConfig configures per-IP request limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file
// loaded. The CircleCI token is resolved from the environment.
func Default() *Config {
	var cfg Config

	cfg.applyDefaults()

	return &cfg
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.CircleCI.APIURL == "" {
		c.CircleCI.APIURL = DefaultAPIURL
	}

	if c.CircleCI.TokenEnv == "" {
		c.CircleCI.TokenEnv = DefaultTokenEnv
	}

	if c.CircleCI.RequestsPerMinute == 0 {
		c.CircleCI.RequestsPerMinute = DefaultRequestsPerMinute
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = DefaultOutputDir
	}

	if len(c.Report.JobPrefixes) == 0 {
		c.Report.JobPrefixes = append(
			[]string(nil), defaultJobPrefixes...,
		)
	}

	if c.Report.ArtifactPrefix == "" {
		c.Report.ArtifactPrefix = DefaultArtifactPrefix
	}

	if c.Report.SummarySuffix == "" {
		c.Report.SummarySuffix = DefaultSummarySuffix
	}

	if c.Report.FailuresSuffix == "" {
		c.Report.FailuresSuffix = DefaultFailuresSuffix
	}

	if c.API != nil && c.API.Listen == "" {
		c.API.Listen = ":8080"
	}
}

// ResolveToken returns the CircleCI API token, falling back to the
// configured environment variable when the config file has none.
func (c *CircleCIConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}

	return os.Getenv(c.TokenEnv)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.CircleCI.APIURL == "" {
		return fmt.Errorf("circleci api_url is required")
	}

	if !strings.HasPrefix(c.CircleCI.APIURL, "http://") &&
		!strings.HasPrefix(c.CircleCI.APIURL, "https://") {
		return fmt.Errorf("circleci api_url %q must be an http(s) URL", c.CircleCI.APIURL)
	}

	if c.CircleCI.RequestsPerMinute < 0 {
		return fmt.Errorf("circleci requests_per_minute must not be negative")
	}

	for i, prefix := range c.Report.JobPrefixes {
		if prefix == "" {
			return fmt.Errorf("report job_prefixes[%d] must not be empty", i)
		}
	}

	if c.Upload != nil && c.Upload.S3 != nil && c.Upload.S3.Enabled {
		if c.Upload.S3.Bucket == "" {
			return fmt.Errorf("upload s3 bucket is required when enabled")
		}
	}

	if c.Database != nil {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	if c.API != nil && c.API.RateLimit.Enabled &&
		c.API.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("api rate_limit requests_per_minute must be positive")
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case "sqlite":
		if d.SQLite.Path == "" {
			return fmt.Errorf("database sqlite path is required")
		}
	case "postgres":
		if d.Postgres.Host == "" || d.Postgres.Database == "" {
			return fmt.Errorf("database postgres host and database are required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", d.Driver)
	}

	return nil
}
