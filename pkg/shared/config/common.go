package config

import (
	"crypto/tls"
	"time"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHTTPClientConfig holds additional configuration settings for the resty http client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// DefaultHTTPConfig returns the base configuration applicable to all HTTP clients.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12, // Enforce a minimum TLS version
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a specific http config for Resty.
func DefaultRestyConfig() RestyHTTPClientConfig {
	baseConfig := DefaultHTTPConfig()
	return RestyHTTPClientConfig{
		BaseHTTPConfig: baseConfig,
		Debug:          false,
	}
}

// Scan engine defaults applied when the config file leaves them unset.
const (
	DefaultScanJobs    = 4
	DefaultScanTimeout = 10 * time.Minute
	DefaultMaxFileSize = 1 << 20 // 1 MiB per source file
	DefaultMLThreshold = 0.6
	DefaultMLBatchSize = 8
	DefaultGitDepth    = 1
	DefaultGitTimeout  = 5 * time.Minute
)

// DefaultAmbiguousCategories lists the finding categories whose heuristic
// matches collide with ordinary identifiers often enough to warrant the ML
// pass. Overridable via scan.ambiguous_categories.
func DefaultAmbiguousCategories() []string {
	return []string{"name", "gender", "race", "state", "income", "account", "card"}
}
