package render

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/navigator"
)

// Subscribe registers a snapshot subscription on bus. Call it before the
// navigator starts publishing so no snapshot is missed.
func Subscribe(bus *events.Bus) (<-chan navigator.Snapshot, func()) {
	return events.Subscribe[navigator.Snapshot](bus, 16)
}

// Loop renders every snapshot received on snaps until ctx is done or the
// channel closes. Render errors are logged and do not stop the loop.
// onRendered, when non-nil, is called after each successful render.
func Loop(ctx context.Context, snaps <-chan navigator.Snapshot, r Renderer, onRendered func(navigator.Snapshot)) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snaps:
			if !ok {
				return
			}
			if err := r.Render(ctx, s); err != nil {
				slog.WarnContext(ctx, "Render failed",
					logfields.NavigationID(s.NavigationID),
					logfields.View(s.View.String()),
					logfields.Error(err))
				continue
			}
			if onRendered != nil {
				onRendered(s)
			}
		}
	}
}
