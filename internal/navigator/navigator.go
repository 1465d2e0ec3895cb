// Package navigator turns URL changes into render-ready snapshots.
//
// A single goroutine (Run) owns the navigation state. Navigate and Reload
// post messages to it; fetch completions from the sidebar cache and the
// document slot are posted back as messages, so state is only ever touched
// by the loop. Every transition publishes a Snapshot on the event bus.
package navigator

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/events"
	"git.home.luguber.info/inful/docnav/internal/fetch"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/observability"
	"git.home.luguber.info/inful/docnav/internal/resource"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/sidebar"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

type (
	navigateMsg struct {
		url    string
		reload bool
	}
	documentSettled struct{ res *resource.Resource }
	sidebarSettled  struct{ update sidebar.Update }
	barrier         struct{ done chan struct{} }
)

// session is the loop-owned state of the current navigation.
type session struct {
	id         string
	url        string
	route      route.Route
	ctx        context.Context
	doc        *resource.Resource
	stale      *content.MarkdownPage
	sidebarErr error
}

// Navigator is the navigation orchestrator.
type Navigator struct {
	sidebars *sidebar.Cache
	docs     *resource.Slot
	bus      *events.Bus
	catalog  *versioning.Catalog
	recorder metrics.Recorder
	logger   *slog.Logger

	msgs    chan any
	stopped chan struct{}
	running atomic.Bool
	current atomic.Pointer[Snapshot]

	// loop-owned
	sess *session
	seq  uint64
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithBus publishes snapshots on b.
func WithBus(b *events.Bus) Option { return func(n *Navigator) { n.bus = b } }

// WithCatalog sets the version catalog used for sidebar labels.
func WithCatalog(c *versioning.Catalog) Option {
	return func(n *Navigator) {
		if c != nil {
			n.catalog = c
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(n *Navigator) {
		if r != nil {
			n.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a navigator loading resources through f.
func New(f fetch.Fetcher, opts ...Option) *Navigator {
	n := &Navigator{
		catalog:  versioning.DefaultCatalog(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		msgs:     make(chan any, 16),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.sidebars = sidebar.New(f,
		sidebar.WithObserver(func(u sidebar.Update) { n.post(sidebarSettled{update: u}) }),
		sidebar.WithRecorder(n.recorder),
		sidebar.WithLogger(n.logger),
	)
	n.docs = resource.NewSlot(f,
		resource.WithSettle(func(r *resource.Resource) { n.post(documentSettled{res: r}) }),
		resource.WithRecorder(n.recorder),
		resource.WithLogger(n.logger),
	)
	return n
}

// Sidebars exposes the sidebar cache, e.g. for invalidation on source changes.
func (n *Navigator) Sidebars() *sidebar.Cache { return n.sidebars }

// Current returns the last published snapshot.
func (n *Navigator) Current() Snapshot {
	if s := n.current.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Navigate requests a transition to url.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	return n.send(ctx, navigateMsg{url: url})
}

// Reload re-runs the current route. The current page stays visible, flagged
// stale, until the new document settles.
func (n *Navigator) Reload(ctx context.Context) error {
	return n.send(ctx, navigateMsg{reload: true})
}

// Sync returns once every message posted before it has been handled.
func (n *Navigator) Sync(ctx context.Context) error {
	b := barrier{done: make(chan struct{})}
	if err := n.send(ctx, b); err != nil {
		return err
	}
	select {
	case <-b.done:
		return nil
	case <-n.stopped:
		return ferrors.RuntimeError("navigator stopped").Build()
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "sync canceled").Build()
	}
}

func (n *Navigator) send(ctx context.Context, msg any) error {
	select {
	case n.msgs <- msg:
		return nil
	case <-n.stopped:
		return ferrors.RuntimeError("navigator stopped").Build()
	case <-ctx.Done():
		return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "navigation canceled").Build()
	}
}

// post is used by fetch goroutines; it drops the message once the loop exits.
func (n *Navigator) post(msg any) {
	select {
	case n.msgs <- msg:
	case <-n.stopped:
	}
}

// Run processes navigation messages until ctx is done. Fetches started by
// the loop use ctx, so they are canceled with it.
func (n *Navigator) Run(ctx context.Context) error {
	if !n.running.CompareAndSwap(false, true) {
		return ferrors.InternalError("navigator already running").Build()
	}
	defer close(n.stopped)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-n.msgs:
			switch m := msg.(type) {
			case navigateMsg:
				n.handleNavigate(ctx, m)
			case documentSettled:
				n.handleDocument(m.res)
			case sidebarSettled:
				n.handleSidebar(m.update)
			case barrier:
				close(m.done)
			}
		}
	}
}

// Wait blocks until all fetches started by the navigator have finished.
func (n *Navigator) Wait() {
	n.sidebars.Wait()
	n.docs.Wait()
}

func (n *Navigator) handleNavigate(runCtx context.Context, m navigateMsg) {
	prev := n.sess
	url := m.url
	if m.reload {
		if prev == nil {
			return
		}
		url = prev.url
	}

	r := route.Resolve(url)
	s := &session{id: uuid.NewString(), url: url, route: r}
	s.ctx = observability.WithRoute(observability.WithNavigationID(runCtx, s.id), r.Kind.String(), url)
	if m.reload && prev.doc != nil {
		if st := prev.doc.State(); st.Status == resource.Ready {
			s.stale = st.Page
		} else if prev.stale != nil {
			s.stale = prev.stale
		}
	}
	n.sess = s
	n.recorder.IncNavigation(r.Kind.String())

	msg := "Navigating"
	if m.reload {
		msg = "Reloading"
	}
	n.logger.InfoContext(s.ctx, msg)

	if r.NeedsSidebar() {
		n.sidebars.Ensure(s.ctx, r.SidebarVersion())
	}
	if key, ok := r.ContentPath(); ok {
		s.doc = n.docs.Replace(s.ctx, key)
	} else {
		n.docs.Clear()
	}
	n.publish(runCtx)
}

func (n *Navigator) handleDocument(res *resource.Resource) {
	s := n.sess
	if s == nil || s.doc != res {
		n.recorder.IncStaleDiscard(metrics.FetchDocument)
		return
	}
	s.stale = nil
	n.publish(s.ctx)
}

func (n *Navigator) handleSidebar(u sidebar.Update) {
	s := n.sess
	if s == nil || !s.route.NeedsSidebar() || u.Version != s.route.SidebarVersion() {
		return
	}
	s.sidebarErr = u.Err
	n.publish(s.ctx)
}

func (n *Navigator) publish(ctx context.Context) {
	n.seq++
	snap := n.derive(n.seq)
	n.current.Store(&snap)

	n.logger.DebugContext(ctx, "Snapshot",
		logfields.Seq(snap.Seq),
		logfields.View(snap.View.String()),
		logfields.Status(snap.DocStatus.String()))

	if n.bus == nil {
		return
	}
	if err := n.bus.Publish(ctx, snap); err != nil {
		n.logger.WarnContext(ctx, "Snapshot not delivered", logfields.Error(err))
	}
}

// derive computes the snapshot for the current session.
func (n *Navigator) derive(seq uint64) Snapshot {
	s := n.sess
	snap := Snapshot{
		Seq:          seq,
		NavigationID: s.id,
		URL:          s.url,
		Route:        s.route,
		SidebarErr:   s.sidebarErr,
	}

	sidebarReady := true
	if s.route.NeedsSidebar() {
		v := s.route.SidebarVersion()
		data, ok := n.sidebars.Lookup(v)
		sidebarReady = ok
		if ok {
			snap.Sidebar = data
			snap.SidebarVersion = v
			snap.SidebarLabel = n.catalog.Label(v)
		}
	}

	if s.doc == nil {
		snap.View = ViewStatic
		return snap
	}

	st := s.doc.State()
	snap.DocStatus = st.Status
	switch {
	case st.Status == resource.Failed:
		snap.View = ViewError
		snap.DocErr = st.Err
	case st.Status == resource.Ready && sidebarReady:
		snap.View = ViewContent
		snap.Document = st.Page
	case st.Status == resource.Pending && s.stale != nil && sidebarReady:
		snap.View = ViewContent
		snap.Document = s.stale
		snap.Stale = true
	default:
		snap.View = ViewLoading
	}
	return snap
}
