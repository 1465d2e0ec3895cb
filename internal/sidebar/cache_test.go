package sidebar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/testutil/fetchtest"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

func newCache(t *testing.T) (*Cache, *fetchtest.Gated, chan Update) {
	t.Helper()
	gated := fetchtest.NewGated(t)
	updates := make(chan Update, 16)
	c := New(gated, WithObserver(func(u Update) { updates <- u }))
	return c, gated, updates
}

func nextUpdate(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sidebar update")
	}
	return Update{}
}

func TestEnsureFetchesOnceAndHits(t *testing.T) {
	c, gated, updates := newCache(t)
	key := route.SidebarPath("v0.8")

	require.True(t, c.Ensure(t.Context(), "v0.8"))
	gated.AwaitPending(key, 1)
	gated.Release(key, fetchtest.Sidebar("Guide", "guide/intro"))

	u := nextUpdate(t, updates)
	require.NoError(t, u.Err)
	require.Equal(t, versioning.ID("v0.8"), u.Version)

	data, ok := c.Lookup("v0.8")
	require.True(t, ok)
	require.Len(t, data.Sections, 1)

	require.False(t, c.Ensure(t.Context(), "v0.8"))
	c.Wait()
	require.Equal(t, 1, gated.Calls(key))
}

func TestEnsureDedupesSameVersionInFlight(t *testing.T) {
	c, gated, updates := newCache(t)
	key := route.SidebarPath(versioning.Latest)

	require.True(t, c.Ensure(t.Context(), versioning.Latest))
	require.False(t, c.Ensure(t.Context(), versioning.Latest))
	require.True(t, c.Pending(versioning.Latest))

	gated.AwaitPending(key, 1)
	gated.Release(key, fetchtest.Sidebar("Docs"))
	nextUpdate(t, updates)
	c.Wait()

	require.Equal(t, 1, gated.Calls(key))
	require.False(t, c.Pending(versioning.Latest))
}

func TestEnsureSwitchesVersions(t *testing.T) {
	c, gated, updates := newCache(t)
	k1, k2 := route.SidebarPath("v1"), route.SidebarPath("v2")

	require.True(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(k1, 1)
	gated.Release(k1, fetchtest.Sidebar("one"))
	nextUpdate(t, updates)

	require.True(t, c.Ensure(t.Context(), "v2"))
	gated.AwaitPending(k2, 1)
	gated.Release(k2, fetchtest.Sidebar("two"))
	nextUpdate(t, updates)

	entry, ok := c.Entry()
	require.True(t, ok)
	require.Equal(t, versioning.ID("v2"), entry.Version)
	require.Equal(t, "two", entry.Data.Sections[0].Title)

	_, ok = c.Lookup("v1")
	require.False(t, ok)
}

func TestOutOfOrderCompletionKeepsLatestVersion(t *testing.T) {
	c, gated, updates := newCache(t)
	k1, k2 := route.SidebarPath("v1"), route.SidebarPath("v2")

	require.True(t, c.Ensure(t.Context(), "v1"))
	require.True(t, c.Ensure(t.Context(), "v2"))
	gated.AwaitPending(k1, 1)
	gated.AwaitPending(k2, 1)

	gated.Release(k2, fetchtest.Sidebar("two"))
	u := nextUpdate(t, updates)
	require.Equal(t, versioning.ID("v2"), u.Version)

	gated.Release(k1, fetchtest.Sidebar("one"))
	c.Wait()

	select {
	case u := <-updates:
		t.Fatalf("superseded completion delivered: %+v", u)
	default:
	}
	entry, ok := c.Entry()
	require.True(t, ok)
	require.Equal(t, versioning.ID("v2"), entry.Version)
}

func TestHitSupersedesOtherVersionInFlight(t *testing.T) {
	c, gated, updates := newCache(t)
	k1, k2 := route.SidebarPath("v1"), route.SidebarPath("v2")

	require.True(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(k1, 1)
	gated.Release(k1, fetchtest.Sidebar("one"))
	nextUpdate(t, updates)

	require.True(t, c.Ensure(t.Context(), "v2"))
	require.False(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(k2, 1)
	gated.Release(k2, fetchtest.Sidebar("two"))
	c.Wait()

	entry, _ := c.Entry()
	require.Equal(t, versioning.ID("v1"), entry.Version)
}

func TestFailureLeavesEntryIntact(t *testing.T) {
	c, gated, updates := newCache(t)
	k1, k2 := route.SidebarPath("v1"), route.SidebarPath("v2")

	require.True(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(k1, 1)
	gated.Release(k1, fetchtest.Sidebar("one"))
	nextUpdate(t, updates)

	require.True(t, c.Ensure(t.Context(), "v2"))
	gated.AwaitPending(k2, 1)
	gated.Fail(k2, ferrors.NetworkError("connection refused").Build())

	u := nextUpdate(t, updates)
	require.Error(t, u.Err)
	require.Equal(t, versioning.ID("v2"), u.Version)
	require.Nil(t, u.Data)

	entry, ok := c.Entry()
	require.True(t, ok)
	require.Equal(t, versioning.ID("v1"), entry.Version)

	// A later Ensure for the failed version tries again.
	require.True(t, c.Ensure(t.Context(), "v2"))
	gated.AwaitPending(k2, 1)
	gated.Release(k2, fetchtest.Sidebar("two"))
	u = nextUpdate(t, updates)
	require.NoError(t, u.Err)
}

func TestDecodeFailureIsReported(t *testing.T) {
	c, gated, updates := newCache(t)
	key := route.SidebarPath(versioning.Latest)

	require.True(t, c.Ensure(t.Context(), versioning.Latest))
	gated.AwaitPending(key, 1)
	gated.Release(key, `{"nope":true}`)

	u := nextUpdate(t, updates)
	require.True(t, ferrors.HasCategory(u.Err, ferrors.CategoryDecode))
	_, ok := c.Entry()
	require.False(t, ok)
}

func TestInvalidateRefetchesButKeepsServing(t *testing.T) {
	c, gated, updates := newCache(t)
	key := route.SidebarPath("v1")

	require.True(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(key, 1)
	gated.Release(key, fetchtest.Sidebar("old"))
	nextUpdate(t, updates)

	c.Invalidate()
	data, ok := c.Lookup("v1")
	require.True(t, ok)
	require.Equal(t, "old", data.Sections[0].Title)

	require.True(t, c.Ensure(t.Context(), "v1"))
	gated.AwaitPending(key, 1)
	gated.Release(key, fetchtest.Sidebar("new"))
	nextUpdate(t, updates)

	entry, _ := c.Entry()
	require.False(t, entry.Stale)
	require.Equal(t, "new", entry.Data.Sections[0].Title)
	require.Equal(t, 2, gated.Calls(key))
}
