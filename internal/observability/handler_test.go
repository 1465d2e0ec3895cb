package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextHandlerAddsNavigationAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil))).With("component", "sidebar")

	ctx := WithNavigationID(context.Background(), "nav-7")
	logger.InfoContext(ctx, "fetched")

	out := buf.String()
	for _, want := range []string{"navigation_id=nav-7", "component=sidebar", "msg=fetched"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}

	buf.Reset()
	logger.InfoContext(context.Background(), "plain")
	if strings.Contains(buf.String(), "navigation_id") {
		t.Errorf("unexpected navigation_id in %q", buf.String())
	}
}

func TestContextHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
