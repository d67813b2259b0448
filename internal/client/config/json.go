package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storeit/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Keys that are
// absent leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerURL         string          `json:"server_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	SearchDebounce    *timex.Duration `json:"search_debounce"`
	SearchCacheTTL    *timex.Duration `json:"search_cache_ttl"`
	SearchCacheSize   *int            `json:"search_cache_size"`
	MaxUploadSize     *int64          `json:"max_upload_size"`
	UploadConcurrency *int            `json:"upload_concurrency"`
	MetricsAddr       *string         `json:"metrics_addr"`
	LogLevel          string          `json:"log_level"`
}

// parseJson overlays cfg with the values present in the file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SearchDebounce != nil {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
	if jc.SearchCacheTTL != nil {
		cfg.SearchCacheTTL = jc.SearchCacheTTL.Duration
	}
	if jc.SearchCacheSize != nil {
		cfg.SearchCacheSize = *jc.SearchCacheSize
	}
	if jc.MaxUploadSize != nil {
		cfg.MaxUploadSize = *jc.MaxUploadSize
	}
	if jc.UploadConcurrency != nil {
		cfg.UploadConcurrency = *jc.UploadConcurrency
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
