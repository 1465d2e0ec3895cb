package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyNavigationID = "navigation_id"
	KeyRoute        = "route"
	KeyURL          = "url"
	KeyVersion      = "version"
	KeyFetchKey     = "fetch_key"
	KeyGeneration   = "generation"
	KeyStatus       = "status"
	KeyView         = "view"
	KeySeq          = "seq"
	KeyDurationMS   = "duration_ms"
	KeyAttempt      = "attempt"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func NavigationID(id string) slog.Attr { return slog.String(KeyNavigationID, id) }
func Route(kind string) slog.Attr      { return slog.String(KeyRoute, kind) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func FetchKey(k string) slog.Attr      { return slog.String(KeyFetchKey, k) }
func Generation(g uint64) slog.Attr    { return slog.Uint64(KeyGeneration, g) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func View(v string) slog.Attr          { return slog.String(KeyView, v) }
func Seq(n uint64) slog.Attr           { return slog.Uint64(KeySeq, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Attempt(n int) slog.Attr          { return slog.Int(KeyAttempt, n) }

// Version renders the default/latest key as "latest" so it is visible in logs.
func Version(v string) slog.Attr {
	if v == "" {
		return slog.String(KeyVersion, "latest")
	}
	return slog.String(KeyVersion, v)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
