package config

import (
	"github.com/spf13/pflag"
)

const (
	flagConfig            = "config"
	flagEnvFile           = "env-file"
	flagServer            = "server"
	flagTimeout           = "timeout"
	flagSearchDebounce    = "search-debounce"
	flagSearchCacheTTL    = "search-cache-ttl"
	flagSearchCacheSize   = "search-cache-size"
	flagMaxUploadSize     = "max-upload-size"
	flagUploadConcurrency = "upload-concurrency"
	flagMetricsAddr       = "metrics-addr"
	flagLogLevel          = "log-level"
)

// BindFlags registers the configuration flags on fs. The defaults shown in
// help are the built-in ones; only flags the user sets override other sources.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(flagConfig, "c", "", "path to JSON config file")
	fs.String(flagEnvFile, ".env", "optional file of KEY=value environment defaults")
	fs.StringP(flagServer, "s", d.ServerURL, "backend base URL")
	fs.Duration(flagTimeout, d.RequestTimeout, "per-request timeout (0 = no limit)")
	fs.Duration(flagSearchDebounce, d.SearchDebounce, "search input quiet period")
	fs.Duration(flagSearchCacheTTL, d.SearchCacheTTL, "search result cache TTL (0 = disabled)")
	fs.Int(flagSearchCacheSize, d.SearchCacheSize, "search result cache entries")
	fs.Int64(flagMaxUploadSize, d.MaxUploadSize, "maximum upload size in bytes")
	fs.Int(flagUploadConcurrency, d.UploadConcurrency, "parallel uploads per batch (0 = unlimited)")
	fs.String(flagMetricsAddr, d.MetricsAddr, "address for the Prometheus /metrics endpoint")
	fs.String(flagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
}

// applyFlags copies every flag the user set into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		err = apply()
	}

	set(flagServer, func() (e error) { cfg.ServerURL, e = fs.GetString(flagServer); return })
	set(flagTimeout, func() (e error) { cfg.RequestTimeout, e = fs.GetDuration(flagTimeout); return })
	set(flagSearchDebounce, func() (e error) { cfg.SearchDebounce, e = fs.GetDuration(flagSearchDebounce); return })
	set(flagSearchCacheTTL, func() (e error) { cfg.SearchCacheTTL, e = fs.GetDuration(flagSearchCacheTTL); return })
	set(flagSearchCacheSize, func() (e error) { cfg.SearchCacheSize, e = fs.GetInt(flagSearchCacheSize); return })
	set(flagMaxUploadSize, func() (e error) { cfg.MaxUploadSize, e = fs.GetInt64(flagMaxUploadSize); return })
	set(flagUploadConcurrency, func() (e error) { cfg.UploadConcurrency, e = fs.GetInt(flagUploadConcurrency); return })
	set(flagMetricsAddr, func() (e error) { cfg.MetricsAddr, e = fs.GetString(flagMetricsAddr); return })
	set(flagLogLevel, func() (e error) { cfg.LogLevel, e = fs.GetString(flagLogLevel); return })
	return err
}
