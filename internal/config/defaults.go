package config

import (
	"fmt"
	"time"
)

// Site defaults; versions match the published docs site.
const (
	DefaultLatestVersion = "v0.8"
	DefaultNextVersion   = "next"
	DefaultBaseURL       = "http://localhost:8080"
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultUserAgent     = "docnav"
	DefaultMetricsListen = ":9464"
	DefaultMetricsPath   = "/metrics"
	DefaultWatchDebounce = 250 * time.Millisecond
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SourceDefaultApplier falls back to a local origin when no source is configured.
type SourceDefaultApplier struct{}

func (SourceDefaultApplier) Domain() string { return "source" }

func (SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Source.BaseURL == "" && cfg.Source.Dir == "" {
		cfg.Source.BaseURL = DefaultBaseURL
	}
	return nil
}

// HTTPDefaultApplier handles HTTP fetcher defaults.
type HTTPDefaultApplier struct{}

func (HTTPDefaultApplier) Domain() string { return "http" }

func (HTTPDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = DefaultHTTPTimeout
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = DefaultUserAgent
	}
	return nil
}

// RetryDefaultApplier normalizes the backoff mode; unknown modes fall back to linear.
type RetryDefaultApplier struct{}

func (RetryDefaultApplier) Domain() string { return "retry" }

func (RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	mode := NormalizeRetryBackoff(string(cfg.Retry.Mode))
	if mode == "" {
		mode = RetryBackoffLinear
	}
	cfg.Retry.Mode = mode
	if cfg.Retry.Initial <= 0 {
		cfg.Retry.Initial = 500 * time.Millisecond
	}
	if cfg.Retry.Max <= 0 {
		cfg.Retry.Max = 5 * time.Second
	}
	if cfg.Retry.MaxRetries < 0 {
		cfg.Retry.MaxRetries = 0
	}
	return nil
}

// VersionsDefaultApplier fills in the latest/next labels and the version list.
type VersionsDefaultApplier struct{}

func (VersionsDefaultApplier) Domain() string { return "versions" }

func (VersionsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Versions.Latest == "" {
		cfg.Versions.Latest = DefaultLatestVersion
	}
	if cfg.Versions.Next == "" {
		cfg.Versions.Next = DefaultNextVersion
	}
	if len(cfg.Versions.List) == 0 {
		cfg.Versions.List = []string{cfg.Versions.Next, cfg.Versions.Latest}
	}
	return nil
}

// MonitoringDefaultApplier handles metrics and watch defaults.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		SourceDefaultApplier{},
		HTTPDefaultApplier{},
		RetryDefaultApplier{},
		VersionsDefaultApplier{},
		MonitoringDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers() {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("apply %s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}
