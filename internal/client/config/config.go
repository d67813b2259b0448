package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/storeit/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	// EnvServerURL overrides the JSON server URL.
	EnvServerURL = "STOREIT_SERVER_URL"
	// EnvToken supplies the bearer credential to one-shot commands.
	EnvToken = "STOREIT_TOKEN"
)

type Config struct {
	ServerURL string
	// RequestTimeout bounds each backend call; zero keeps the transport default.
	RequestTimeout    time.Duration
	SearchDebounce    time.Duration
	SearchCacheTTL    time.Duration
	SearchCacheSize   int
	MaxUploadSize     int64
	UploadConcurrency int
	// MetricsAddr enables the /metrics endpoint when set.
	MetricsAddr string
	LogLevel    string
	// Token is the bearer credential found in the environment, if any.
	Token string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/"
	c.RequestTimeout = 0
	c.SearchDebounce = 500 * time.Millisecond
	c.SearchCacheTTL = 30 * time.Second
	c.SearchCacheSize = 64
	c.MaxUploadSize = common.MaxFileSize
	c.UploadConcurrency = 0
	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the JSON file named by the
// --config flag, the environment and then explicitly set flags. fs must have
// been populated by BindFlags and parsed.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := fs.GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}

	envFile, err := fs.GetString(flagEnvFile)
	if err != nil {
		return nil, err
	}
	getenv, err := envLookup(envFile)
	if err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)

	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envLookup reads the process environment, falling back to the KEY=value
// pairs of path. A missing file is not an error.
func envLookup(path string) (func(string) string, error) {
	var file map[string]string
	if path != "" {
		var err error
		file, err = godotenv.Read(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return file[key]
	}, nil
}

func parseEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := getenv(EnvToken); v != "" {
		cfg.Token = v
	}
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("%w: server url is empty", common.ErrorValidation)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", common.ErrorValidation)
	}
	if c.UploadConcurrency < 0 || c.SearchCacheSize < 0 {
		return fmt.Errorf("%w: negative limit", common.ErrorValidation)
	}
	return nil
}
