package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/config"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/retry"
)

func TestHTTPFetcherFetchJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/site/static/docs/sidebar.json" || r.Header.Get("User-Agent") != "docnav-test" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"sections":[]}`))
	}))
	t.Cleanup(server.Close)

	f, err := NewHTTPFetcher(server.URL+"/site/", WithUserAgent("docnav-test"))
	require.NoError(t, err)

	body, err := f.FetchJSON(t.Context(), "/static/docs/sidebar.json")
	require.NoError(t, err)
	require.JSONEq(t, `{"sections":[]}`, string(body))
}

func TestHTTPFetcherNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	f, err := NewHTTPFetcher(server.URL)
	require.NoError(t, err)

	_, err = f.FetchJSON(t.Context(), "/static/posts/missing.json")
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryNotFound, ferrors.GetCategory(err))
	require.False(t, ferrors.CanRetry(err))
}

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"html":"ok"}`))
	}))
	t.Cleanup(server.Close)

	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	f, err := NewHTTPFetcher(server.URL, WithRetryPolicy(policy))
	require.NoError(t, err)

	body, err := f.FetchJSON(t.Context(), "/static/docs/a/b.json")
	require.NoError(t, err)
	require.Equal(t, `{"html":"ok"}`, string(body))
	require.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcherNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	f, err := NewHTTPFetcher(server.URL)
	require.NoError(t, err)

	_, err = f.FetchJSON(t.Context(), "/static/docs/a/b.json")
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryNetwork, ferrors.GetCategory(err))
	require.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcherClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	policy := retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	f, err := NewHTTPFetcher(server.URL, WithRetryPolicy(policy))
	require.NoError(t, err)

	_, err = f.FetchJSON(t.Context(), "/static/docs/a/b.json")
	require.Error(t, err)
	require.False(t, ferrors.CanRetry(err))
	require.Equal(t, int32(1), calls.Load())
}

func TestNewHTTPFetcherRejectsBadScheme(t *testing.T) {
	_, err := NewHTTPFetcher("ftp://example.com")
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err))
}
