package watch

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Invalidator drops cached sidebar data.
type Invalidator interface {
	Invalidate()
}

// Reloader re-runs the current navigation.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadOnChange consumes SourceChanged events from changes until ctx is done
// or the channel closes. Sidebar changes invalidate the sidebar cache before
// the reload so the new sidebar is fetched.
func ReloadOnChange(ctx context.Context, changes <-chan events.SourceChanged, sidebars Invalidator, nav Reloader) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			if ev.SidebarAffected() {
				sidebars.Invalidate()
			}
			slog.InfoContext(ctx, "Reloading after change", slog.Int("files", len(ev.Paths)))
			if err := nav.Reload(ctx); err != nil {
				slog.WarnContext(ctx, "Reload failed", logfields.Error(err))
			}
		}
	}
}
