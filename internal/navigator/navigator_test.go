package navigator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/events"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/resource"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/testutil/fetchtest"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

const (
	latestSidebar = "/static/docs/sidebar.json"
	introKey      = "/static/docs/guide/intro.json"
)

type harness struct {
	t     *testing.T
	nav   *Navigator
	gated *fetchtest.Gated
	snaps <-chan Snapshot
	seen  []Snapshot
}

func start(t *testing.T) *harness {
	t.Helper()
	gated := fetchtest.NewGated(t)
	bus := events.NewBus()
	snaps, unsubscribe := events.Subscribe[Snapshot](bus, 128)
	nav := New(gated, WithBus(bus))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- nav.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		nav.Wait()
		unsubscribe()
		bus.Close()
	})
	return &harness{t: t, nav: nav, gated: gated, snaps: snaps}
}

func (h *harness) navigate(url string) {
	h.t.Helper()
	require.NoError(h.t, h.nav.Navigate(h.t.Context(), url))
}

func (h *harness) serve(key, body string) {
	h.t.Helper()
	h.gated.AwaitPending(key, 1)
	h.gated.Release(key, body)
}

// await returns the first snapshot satisfying pred, recording every snapshot seen.
func (h *harness) await(pred func(Snapshot) bool) Snapshot {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.snaps:
			h.seen = append(h.seen, s)
			if pred(s) {
				return s
			}
		case <-timeout:
			h.t.Fatalf("no matching snapshot; current %+v", h.nav.Current())
			return Snapshot{}
		}
	}
}

func (h *harness) drain() {
	for {
		select {
		case s := <-h.snaps:
			h.seen = append(h.seen, s)
		default:
			return
		}
	}
}

func onURL(url string, v View) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.URL == url && s.View == v }
}

func TestDocumentRendersOnceSidebarAndPageReady(t *testing.T) {
	h := start(t)
	h.navigate("/docs/guide/intro")

	first := h.await(func(Snapshot) bool { return true })
	require.Equal(t, ViewLoading, first.View)
	require.Equal(t, route.Docs, first.Route.Kind)
	require.NotEmpty(t, first.NavigationID)

	h.serve(introKey, fetchtest.Page("<p>intro</p>"))
	loading := h.await(func(s Snapshot) bool { return s.DocStatus == resource.Ready })
	require.Equal(t, ViewLoading, loading.View)
	require.Nil(t, loading.Document)

	h.serve(latestSidebar, fetchtest.Sidebar("Guide", "guide/intro"))
	s := h.await(onURL("/docs/guide/intro", ViewContent))
	require.Equal(t, "<p>intro</p>", s.Document.HTML)
	require.Equal(t, versioning.Latest, s.SidebarVersion)
	require.Equal(t, "next", s.SidebarLabel)
	require.NotNil(t, s.Sidebar)
	require.Equal(t, s.Seq, h.nav.Current().Seq)
}

func TestLateResultOfSupersededNavigationIsIgnored(t *testing.T) {
	h := start(t)
	const one, two = "/static/docs/a/one.json", "/static/docs/a/two.json"

	h.navigate("/docs/a/one")
	h.navigate("/docs/a/two")
	h.serve(latestSidebar, fetchtest.Sidebar("A"))
	h.serve(two, fetchtest.Page("two"))
	s := h.await(onURL("/docs/a/two", ViewContent))
	require.Equal(t, "two", s.Document.HTML)

	h.serve(one, fetchtest.Page("one"))
	h.nav.Wait()
	h.drain()

	for _, snap := range h.seen {
		if snap.Document != nil {
			require.Equal(t, "two", snap.Document.HTML)
		}
	}
	require.Equal(t, "two", h.nav.Current().Document.HTML)
	require.Equal(t, 1, h.gated.Calls(latestSidebar))
}

func TestNavigateAwayBeforeDocumentResolves(t *testing.T) {
	h := start(t)

	h.navigate("/docs/guide/intro")
	h.gated.AwaitPending(introKey, 1)
	h.navigate("/news")
	h.await(onURL("/news", ViewStatic))

	h.gated.Release(introKey, fetchtest.Page("intro"))
	h.serve(latestSidebar, fetchtest.Sidebar("Guide"))
	h.nav.Wait()
	h.drain()

	cur := h.nav.Current()
	require.Equal(t, route.NewsIndex, cur.Route.Kind)
	require.Equal(t, ViewStatic, cur.View)
	require.Nil(t, cur.Document)
	require.Nil(t, cur.Sidebar)
}

func TestFailedPostThenSuccessfulPost(t *testing.T) {
	h := start(t)

	h.navigate("/news/missing")
	h.gated.AwaitPending("/static/posts/missing.json", 1)
	h.gated.NotFound("/static/posts/missing.json")
	failed := h.await(onURL("/news/missing", ViewError))
	require.Equal(t, resource.Failed, failed.DocStatus)
	require.True(t, ferrors.HasCategory(failed.DocErr, ferrors.CategoryNotFound))
	require.Nil(t, failed.Sidebar)

	h.navigate("/news/real-post")
	h.serve("/static/posts/real-post.json", fetchtest.Page("<p>news</p>"))
	ok := h.await(onURL("/news/real-post", ViewContent))
	require.Equal(t, resource.Ready, ok.DocStatus)
	require.Equal(t, "<p>news</p>", ok.Document.HTML)
	require.Equal(t, 0, h.gated.Calls(latestSidebar))
}

func TestNoWrongVersionSidebarIsExposed(t *testing.T) {
	h := start(t)
	v1Sidebar, v2Sidebar := route.SidebarPath("v1"), route.SidebarPath("v2")

	h.navigate("/docs/v1/guide/intro")
	h.serve(v1Sidebar, fetchtest.Sidebar("v1"))
	h.serve("/static/docs/v1/guide/intro.json", fetchtest.Page("one"))
	s := h.await(onURL("/docs/v1/guide/intro", ViewContent))
	require.Equal(t, versioning.ID("v1"), s.SidebarVersion)
	require.Equal(t, "v1", s.SidebarLabel)

	h.navigate("/docs/v2/guide/intro")
	h.serve("/static/docs/v2/guide/intro.json", fetchtest.Page("two"))
	pending := h.await(func(s Snapshot) bool {
		return s.URL == "/docs/v2/guide/intro" && s.DocStatus == resource.Ready
	})
	require.Equal(t, ViewLoading, pending.View)
	require.Nil(t, pending.Sidebar)

	h.serve(v2Sidebar, fetchtest.Sidebar("v2"))
	done := h.await(onURL("/docs/v2/guide/intro", ViewContent))
	require.Equal(t, "v2", done.Sidebar.Sections[0].Title)

	for _, snap := range h.seen {
		if snap.Sidebar != nil {
			require.Equal(t, snap.Route.SidebarVersion(), snap.SidebarVersion)
			require.Equal(t, string(snap.SidebarVersion), snap.Sidebar.Sections[0].Title)
		}
	}
}

func TestRapidVersionSwitchKeepsLatestSidebar(t *testing.T) {
	h := start(t)
	v1Sidebar, v2Sidebar := route.SidebarPath("v1"), route.SidebarPath("v2")

	h.navigate("/docs/v1/a/b")
	h.navigate("/docs/v2/a/b")
	h.serve("/static/docs/v2/a/b.json", fetchtest.Page("two"))
	h.serve(v2Sidebar, fetchtest.Sidebar("v2"))
	h.await(onURL("/docs/v2/a/b", ViewContent))

	h.serve(v1Sidebar, fetchtest.Sidebar("v1"))
	h.gated.AwaitPending("/static/docs/v1/a/b.json", 1)
	h.gated.Release("/static/docs/v1/a/b.json", fetchtest.Page("one"))
	h.nav.Wait()

	entry, ok := h.nav.Sidebars().Entry()
	require.True(t, ok)
	require.Equal(t, versioning.ID("v2"), entry.Version)
	require.Equal(t, ViewContent, h.nav.Current().View)
}

func TestSidebarFailureKeepsCachedEntry(t *testing.T) {
	h := start(t)
	key := route.SidebarPath("v1")

	h.navigate("/docs/v1/guide/intro")
	h.serve(key, fetchtest.Sidebar("v1"))
	h.serve("/static/docs/v1/guide/intro.json", fetchtest.Page("one"))
	h.await(onURL("/docs/v1/guide/intro", ViewContent))

	h.nav.Sidebars().Invalidate()
	require.NoError(t, h.nav.Reload(t.Context()))
	h.gated.AwaitPending(key, 1)
	h.gated.Fail(key, ferrors.NetworkError("connection reset").Build())

	s := h.await(func(s Snapshot) bool { return s.SidebarErr != nil })
	require.Equal(t, ViewContent, s.View)
	require.NotNil(t, s.Sidebar)
	require.Equal(t, "v1", s.Sidebar.Sections[0].Title)

	entry, ok := h.nav.Sidebars().Entry()
	require.True(t, ok)
	require.Equal(t, versioning.ID("v1"), entry.Version)
}

func TestSidebarFailureWithoutEntryStaysLoading(t *testing.T) {
	h := start(t)

	h.navigate("/docs/guide/intro")
	h.serve(introKey, fetchtest.Page("intro"))
	h.gated.AwaitPending(latestSidebar, 1)
	h.gated.Fail(latestSidebar, ferrors.NetworkError("down").Build())

	s := h.await(func(s Snapshot) bool { return s.SidebarErr != nil })
	require.Equal(t, ViewLoading, s.View)
	require.Nil(t, s.Sidebar)

	// Reload retries the sidebar.
	require.NoError(t, h.nav.Reload(t.Context()))
	h.serve(latestSidebar, fetchtest.Sidebar("Guide"))
	h.serve(introKey, fetchtest.Page("intro"))
	ok := h.await(onURL("/docs/guide/intro", ViewContent))
	require.NoError(t, ok.SidebarErr)
}

func TestReloadShowsStalePageUntilSettled(t *testing.T) {
	h := start(t)

	h.navigate("/docs/guide/intro")
	h.serve(latestSidebar, fetchtest.Sidebar("Guide"))
	h.serve(introKey, fetchtest.Page("old"))
	first := h.await(onURL("/docs/guide/intro", ViewContent))

	require.NoError(t, h.nav.Reload(t.Context()))
	stale := h.await(func(s Snapshot) bool { return s.Seq > first.Seq })
	require.Equal(t, ViewContent, stale.View)
	require.True(t, stale.Stale)
	require.Equal(t, "old", stale.Document.HTML)
	require.Equal(t, resource.Pending, stale.DocStatus)
	require.NotEqual(t, first.NavigationID, stale.NavigationID)

	h.serve(introKey, fetchtest.Page("new"))
	fresh := h.await(func(s Snapshot) bool { return !s.Stale && s.DocStatus == resource.Ready })
	require.Equal(t, "new", fresh.Document.HTML)
	require.Equal(t, 1, h.gated.Calls(latestSidebar))
}

func TestStaticRoutes(t *testing.T) {
	h := start(t)

	h.navigate("/")
	idx := h.await(onURL("/", ViewStatic))
	require.Equal(t, route.Index, idx.Route.Kind)
	h.serve(latestSidebar, fetchtest.Sidebar("Guide"))
	withSidebar := h.await(func(s Snapshot) bool { return s.Sidebar != nil })
	require.Equal(t, ViewStatic, withSidebar.View)

	for _, u := range []string{"/versions", "/news", "/nope/nope"} {
		h.navigate(u)
		s := h.await(onURL(u, ViewStatic))
		require.Nil(t, s.Sidebar)
		require.Nil(t, s.Document)
	}
	require.Equal(t, route.NotFound, h.nav.Current().Route.Kind)
}

func TestSeqIncreasesByOne(t *testing.T) {
	h := start(t)
	h.navigate("/versions")
	h.navigate("/news")
	a := h.await(onURL("/versions", ViewStatic))
	b := h.await(onURL("/news", ViewStatic))
	require.Equal(t, a.Seq+1, b.Seq)
}

func TestReloadWithoutNavigationIsNoop(t *testing.T) {
	h := start(t)
	require.NoError(t, h.nav.Reload(t.Context()))
	h.navigate("/news")
	s := h.await(func(Snapshot) bool { return true })
	require.Equal(t, uint64(1), s.Seq)
}

func TestRunLifecycle(t *testing.T) {
	nav := New(fetchtest.NewGated(t))
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- nav.Run(ctx) }()

	require.NoError(t, nav.Navigate(t.Context(), "/versions"))
	require.Eventually(t, func() bool { return nav.Current().Seq == 1 }, time.Second, time.Millisecond)

	err := nav.Run(t.Context())
	require.Error(t, err)
	require.Equal(t, ferrors.CategoryInternal, ferrors.GetCategory(err))

	cancel()
	require.NoError(t, <-done)

	for range 20 {
		if err := nav.Navigate(t.Context(), "/news"); err != nil {
			require.Equal(t, ferrors.CategoryRuntime, ferrors.GetCategory(err))
			return
		}
	}
	t.Fatal("navigate after stop never failed")
}

func TestViewString(t *testing.T) {
	require.Equal(t, "content", ViewContent.String())
	require.Equal(t, "unknown", View(42).String())
	require.True(t, Snapshot{View: ViewError}.Renderable())
	require.False(t, Snapshot{}.Renderable())
}

func TestSyncWaitsForPostedNavigations(t *testing.T) {
	h := start(t)
	h.navigate("/versions")
	h.navigate("/news")
	require.NoError(t, h.nav.Sync(t.Context()))
	require.Equal(t, "/news", h.nav.Current().URL)
	require.Equal(t, uint64(2), h.nav.Current().Seq)
}
