package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/fetch"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/navigator"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// session wires one navigator with its collaborators.
type session struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	bus     *events.Bus
	catalog *versioning.Catalog
	nav     *navigator.Navigator
	logger  *slog.Logger

	metricsServer *http.Server
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config, logger *slog.Logger) (fetch.Fetcher, error) {
	if cfg.Source.Dir != "" {
		return fetch.NewDirFetcher(cfg.Source.Dir)
	}
	return fetch.NewHTTPFetcherFromConfig(cfg, logger)
}

func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	f, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:     cfg,
		fetcher: f,
		bus:     events.NewBus(),
		catalog: versioning.NewCatalog(cfg.Versions),
		logger:  logger,
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		s.metricsServer = metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, reg)
	}

	s.nav = navigator.New(f,
		navigator.WithBus(s.bus),
		navigator.WithCatalog(s.catalog),
		navigator.WithRecorder(recorder),
		navigator.WithLogger(logger),
	)
	return s, nil
}

// start runs the navigator loop and, when enabled, the metrics endpoint.
// The returned func stops both and waits for outstanding fetches.
func (s *session) start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.nav.Run(ctx); err != nil {
			s.logger.Error("Navigator stopped", slog.Any("error", err))
		}
	}()

	if s.metricsServer != nil {
		go func() {
			s.logger.Info("Serving metrics", slog.String("addr", s.metricsServer.Addr), slog.String("path", s.cfg.Metrics.Path))
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	return func() {
		cancel()
		<-done
		s.nav.Wait()
		if s.metricsServer != nil {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = s.metricsServer.Shutdown(shutdownCtx)
		}
		s.bus.Close()
	}
}
