// Package common contains shared constants and helpers used across
// storeit client components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a client call with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// MaxFileSize is the largest payload accepted for upload (50 MiB).
	MaxFileSize int64 = 50 * 1024 * 1024
)
