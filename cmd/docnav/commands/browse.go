package commands

import (
	"bufio"
	"context"
	"log/slog"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/events"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/navigator"
	"git.home.luguber.info/inful/docnav/internal/render"
	"git.home.luguber.info/inful/docnav/internal/watch"
)

// BrowseCmd implements the 'browse' command.
type BrowseCmd struct {
	Watch   bool          `help:"Reload when files in source.dir change (implies watch.enabled)"`
	Loading bool          `help:"Also print loading states" default:"true" negatable:""`
	Outline bool          `help:"Print page outlines"`
	Refresh time.Duration `help:"Reload the current page on this interval (overrides watch.refresh)"`
	Drain   time.Duration `help:"How long to wait for the last page once input ends" default:"30s"`
}

func (b *BrowseCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	if b.Watch {
		cfg.Watch.Enabled = true
	}
	if b.Refresh != 0 {
		cfg.Watch.Refresh = b.Refresh
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBrowse(ctx, g, cfg, b)
}

// RunBrowse reads one command per line from g.In: a URL path navigates,
// "reload" re-runs the current page, "quit" exits. Every snapshot is rendered.
func RunBrowse(ctx context.Context, g *Global, cfg *config.Config, b *BrowseCmd) error {
	s, err := newSession(cfg, g.logger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snaps, unsubscribe := render.Subscribe(s.bus)
	changes, unsubscribeChanges := events.Subscribe[events.SourceChanged](s.bus, 4)
	var workers sync.WaitGroup
	defer func() {
		cancel()
		workers.Wait()
		unsubscribe()
		unsubscribeChanges()
	}()

	stop := s.start(ctx)
	defer stop()

	r := render.NewTextRenderer(g.out(), s.catalog)
	r.ShowLoading = b.Loading
	r.Outline = b.Outline
	var rendered atomic.Uint64
	workers.Add(1)
	go func() {
		defer workers.Done()
		render.Loop(ctx, snaps, r, func(snap navigator.Snapshot) { rendered.Store(snap.Seq) })
	}()

	if cfg.Watch.Enabled {
		w, err := watch.New(cfg.Source.Dir, s.bus, cfg.Watch.Debounce, g.logger())
		if err != nil {
			return err
		}
		workers.Add(2)
		go func() {
			defer workers.Done()
			if err := w.Run(ctx); err != nil {
				g.logger().Error("Watcher stopped", slog.Any("error", err))
			}
		}()
		go func() {
			defer workers.Done()
			watch.ReloadOnChange(ctx, changes, s.nav.Sidebars(), s.nav)
		}()
	}

	if cfg.Watch.Refresh > 0 {
		ref, err := watch.NewRefresher(cfg.Watch.Refresh, s.nav.Sidebars(), s.nav, g.logger())
		if err != nil {
			return err
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := ref.Run(ctx); err != nil {
				g.logger().Error("Refresher stopped", slog.Any("error", err))
			}
		}()
	}

	if err := readCommands(ctx, g, s); err != nil {
		return err
	}
	return drain(ctx, s.nav, &rendered, b.Drain)
}

// drain waits until the current snapshot is settled and has been rendered.
func drain(ctx context.Context, nav *navigator.Navigator, rendered *atomic.Uint64, limit time.Duration) error {
	if limit <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	if err := nav.Sync(ctx); err != nil {
		return nil
	}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		cur := nav.Current()
		if cur.Seq == 0 || (settled(cur) && rendered.Load() >= cur.Seq) {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readCommands(ctx context.Context, g *Global, s *session) error {
	if g.In == nil {
		<-ctx.Done()
		return nil
	}
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(g.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryRuntime, "read input").Build()
			}
			return nil
		case line := <-lines:
			cmd := strings.TrimSpace(line)
			switch {
			case cmd == "":
			case cmd == "quit" || cmd == "q":
				return nil
			case cmd == "reload" || cmd == "r":
				if err := s.nav.Reload(ctx); err != nil {
					return err
				}
			case strings.HasPrefix(cmd, "/"):
				if err := s.nav.Navigate(ctx, cmd); err != nil {
					return err
				}
			default:
				g.logger().Warn("Unknown input; expected a URL path, reload or quit", slog.String("input", cmd))
			}
		}
	}
}
