package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/retry"
)

// HTTPFetcher fetches resources relative to a site base URL.
type HTTPFetcher struct {
	base      *url.URL
	client    *http.Client
	userAgent string
	policy    retry.Policy
	logger    *slog.Logger
}

// HTTPOption customizes an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRetryPolicy sets the retry policy applied to retryable failures.
func WithRetryPolicy(p retry.Policy) HTTPOption {
	return func(f *HTTPFetcher) { f.policy = p }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewHTTPFetcher builds a fetcher for baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid base url").
			WithContext("base_url", baseURL).Build()
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, ferrors.ConfigError("unsupported base url scheme").
			WithContext("scheme", base.Scheme).Build()
	}
	f := &HTTPFetcher{
		base:      base,
		client:    NewHTTPClient(config.DefaultHTTPTimeout),
		userAgent: config.DefaultUserAgent,
		policy:    retry.DefaultPolicy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// NewHTTPFetcherFromConfig wires source, http and retry settings.
func NewHTTPFetcherFromConfig(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	return NewHTTPFetcher(cfg.Source.BaseURL,
		WithHTTPClient(NewHTTPClient(cfg.HTTP.Timeout)),
		WithUserAgent(cfg.HTTP.UserAgent),
		WithRetryPolicy(retry.FromConfig(cfg.Retry)),
		WithLogger(logger),
	)
}

// NewHTTPClient creates a client that refuses cross-host redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if req.URL.Host != via[0].URL.Host {
				return errors.New("redirect to different host blocked")
			}
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// FetchJSON implements Fetcher.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, path string) ([]byte, error) {
	target := f.resolve(path)
	var body []byte
	err := f.policy.Do(ctx, func(int) error {
		var err error
		body, err = f.get(ctx, target, path)
		return err
	}, func(attempt int, err error) {
		f.logger.DebugContext(ctx, "Retrying fetch",
			logfields.FetchKey(path), logfields.Attempt(attempt), logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) resolve(path string) string {
	u := *f.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func (f *HTTPFetcher) get(ctx context.Context, target, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "build request").Build()
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "fetch failed").
			Retryable().
			WithContext("fetch_key", key).Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ferrors.NotFoundError("resource not found").
			WithContext("fetch_key", key).Build()
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b := ferrors.NetworkError(fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)).
			WithContext("fetch_key", key).
			WithContext("status", resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			b = b.WithRetry(ferrors.RetryNever)
		}
		return nil, b.Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "read response").
			Retryable().
			WithContext("fetch_key", key).Build()
	}
	if len(data) > maxResponseBytes {
		return nil, ferrors.DecodeError("response too large").
			WithContext("fetch_key", key).Build()
	}
	return data, nil
}
