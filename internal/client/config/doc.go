// Package config loads runtime configuration for the storeit client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config / -c.
//  3. Environment: STOREIT_SERVER_URL and STOREIT_TOKEN. Variables missing
//     from the process environment are looked up in the --env-file
//     (default .env), if it exists.
//  4. Command-line flags registered by BindFlags, when explicitly set.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "500ms" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://storeit.example/api/",
//	  "request_timeout": "30s",
//	  "search_debounce": "500ms",
//	  "search_cache_ttl": "30s",
//	  "search_cache_size": 64,
//	  "max_upload_size": 52428800,
//	  "upload_concurrency": 4,
//	  "metrics_addr": ":9464",
//	  "log_level": "debug"
//	}
package config
