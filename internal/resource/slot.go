package resource

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/fetch"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
)

// SettleFunc is called after a live resource commits its result. It runs on
// the fetch goroutine.
type SettleFunc func(*Resource)

// Slot owns the current document resource and the generation counter.
type Slot struct {
	fetcher  fetch.Fetcher
	onSettle SettleFunc
	recorder metrics.Recorder
	logger   *slog.Logger

	mu         sync.Mutex
	generation uint64
	current    *Resource

	wg sync.WaitGroup
}

// Option configures a Slot.
type Option func(*Slot)

func WithSettle(fn SettleFunc) Option { return func(s *Slot) { s.onSettle = fn } }

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Slot) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Slot) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSlot creates an empty slot backed by f.
func NewSlot(f fetch.Fetcher, opts ...Option) *Slot {
	s := &Slot{
		fetcher:  f,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace discards the current resource and starts loading key under a new
// generation. The returned resource is Pending.
func (s *Slot) Replace(ctx context.Context, key string) *Resource {
	s.mu.Lock()
	if s.current != nil {
		s.current.discard()
	}
	s.generation++
	r := newResource(key, s.generation)
	s.current = r
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Loading document",
		logfields.FetchKey(key), logfields.Generation(r.generation))
	go s.load(ctx, r)
	return r
}

// Clear discards the current resource without replacing it.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.discard()
		s.current = nil
	}
	s.generation++
}

// Current returns the live resource, or nil.
func (s *Slot) Current() *Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Generation returns the latest generation handed out.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Wait blocks until every started load has finished.
func (s *Slot) Wait() {
	s.wg.Wait()
}

func (s *Slot) load(ctx context.Context, r *Resource) {
	defer s.wg.Done()

	start := time.Now()
	page, err := s.fetchPage(ctx, r.key)
	s.recorder.ObserveFetchDuration(metrics.FetchDocument, time.Since(start), err == nil)

	st := State{Status: Ready, Page: page}
	if err != nil {
		st = State{Status: Failed, Err: err}
	}
	if !r.commit(st) {
		s.recorder.IncStaleDiscard(metrics.FetchDocument)
		s.logger.DebugContext(ctx, "Discarding superseded document",
			logfields.FetchKey(r.key), logfields.Generation(r.generation))
		return
	}

	s.recorder.IncDocumentOutcome(st.Status.String())
	if err != nil {
		s.logger.WarnContext(ctx, "Document load failed",
			logfields.FetchKey(r.key), logfields.Error(err))
	}
	if s.onSettle != nil {
		s.onSettle(r)
	}
}

func (s *Slot) fetchPage(ctx context.Context, key string) (*content.MarkdownPage, error) {
	raw, err := s.fetcher.FetchJSON(ctx, key)
	if err != nil {
		return nil, err
	}
	return content.DecodePage(raw)
}
