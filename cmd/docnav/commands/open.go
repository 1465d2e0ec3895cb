package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigator"
	"git.home.luguber.info/inful/docnav/internal/render"
	"git.home.luguber.info/inful/docnav/internal/resource"
)

// OpenCmd implements the 'open' command.
type OpenCmd struct {
	URL     string        `arg:"" help:"Site URL path, e.g. /docs/guide/intro"`
	Outline bool          `help:"Print the page outline after the body"`
	Timeout time.Duration `help:"Give up if the page is not ready in time" default:"30s"`
}

func (o *OpenCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	return RunOpen(context.Background(), g, cfg, o)
}

// RunOpen navigates to one URL, renders the first settled snapshot and
// returns the document error, if any.
func RunOpen(ctx context.Context, g *Global, cfg *config.Config, o *OpenCmd) error {
	s, err := newSession(cfg, g.logger())
	if err != nil {
		return err
	}
	snaps, unsubscribe := render.Subscribe(s.bus)
	defer unsubscribe()
	stop := s.start(ctx)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	if err := s.nav.Navigate(ctx, o.URL); err != nil {
		return err
	}

	r := render.NewTextRenderer(g.out(), s.catalog)
	r.Outline = o.Outline
	r.ShowLoading = true
	for {
		select {
		case <-ctx.Done():
			return ferrors.NetworkError("page not ready before timeout").
				WithContext("url", o.URL).
				WithContext("timeout", o.Timeout.String()).
				Build()
		case snap, ok := <-snaps:
			if !ok {
				return ferrors.RuntimeError("navigator stopped").Build()
			}
			if !settled(snap) {
				continue
			}
			if err := r.Render(ctx, snap); err != nil {
				return ferrors.WrapError(err, ferrors.CategoryRuntime, "render failed").Build()
			}
			switch snap.View {
			case navigator.ViewError:
				return snap.DocErr
			case navigator.ViewLoading:
				return snap.SidebarErr
			}
			return nil
		}
	}
}

// settled reports whether snap is final for a one-shot open. Static views
// still wait for their sidebar when one was requested; a sidebar failure with
// no usable sidebar ends the wait once the document has settled.
func settled(snap navigator.Snapshot) bool {
	if !snap.Renderable() {
		return snap.SidebarErr != nil && snap.DocStatus != resource.Pending
	}
	if snap.View == navigator.ViewStatic {
		return !snap.Route.NeedsSidebar() || snap.Sidebar != nil || snap.SidebarErr != nil
	}
	return !snap.Stale
}
