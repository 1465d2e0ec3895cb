package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// LogContext holds structured logging context for one navigation.
type LogContext struct {
	NavigationID string
	Route        string
	URL          string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithNavigationID adds a navigation ID to the context.
func WithNavigationID(ctx context.Context, id string) context.Context {
	lc := extractLogContext(ctx)
	lc.NavigationID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithRoute adds the resolved route kind and requested URL to the context.
func WithRoute(ctx context.Context, kind, url string) context.Context {
	lc := extractLogContext(ctx)
	lc.Route = kind
	lc.URL = url
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := make([]slog.Attr, 0, 3)
	if lc.NavigationID != "" {
		attrs = append(attrs, logfields.NavigationID(lc.NavigationID))
	}
	if lc.Route != "" {
		attrs = append(attrs, logfields.Route(lc.Route))
	}
	if lc.URL != "" {
		attrs = append(attrs, logfields.URL(lc.URL))
	}
	return attrs
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
