package config

import (
	"net/url"
	"slices"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// Validate checks that the configuration can drive a navigation session.
func (c *Config) Validate() error {
	if c.Source.BaseURL != "" && c.Source.Dir != "" {
		return ferrors.ConfigError("source.base_url and source.dir are mutually exclusive").Build()
	}
	if c.Source.BaseURL == "" && c.Source.Dir == "" {
		return ferrors.ConfigError("one of source.base_url or source.dir is required").Build()
	}
	if c.Source.BaseURL != "" {
		u, err := url.Parse(c.Source.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ferrors.ConfigError("source.base_url must be an absolute http(s) URL").
				WithCause(err).
				WithContext("base_url", c.Source.BaseURL).
				Build()
		}
	}
	if c.Retry.Initial > c.Retry.Max {
		return ferrors.ConfigError("retry.initial must not exceed retry.max").Build()
	}
	if c.Versions.Latest == c.Versions.Next {
		return ferrors.ConfigError("versions.latest and versions.next must differ").Build()
	}
	if slices.Contains(c.Versions.List, "") {
		return ferrors.ConfigError("versions.list must not contain empty entries").Build()
	}
	if c.Watch.Refresh < 0 {
		return ferrors.ConfigError("watch.refresh must not be negative").Build()
	}
	if c.Watch.Enabled && c.Source.Dir == "" {
		return ferrors.ConfigError("watch.enabled requires source.dir").Build()
	}
	return nil
}
