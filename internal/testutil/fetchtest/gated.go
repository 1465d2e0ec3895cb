// Package fetchtest provides fetchers for tests that need to control when and
// in which order fetches complete.
package fetchtest

import (
	"context"
	"sync"
	"testing"
	"time"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

type response struct {
	body []byte
	err  error
}

// Gated is a Fetcher whose calls block until the test releases them. Each
// call to FetchJSON registers one pending request; Release completes the
// oldest pending request for a key.
type Gated struct {
	t *testing.T

	mu      sync.Mutex
	pending map[string][]chan response
	calls   map[string]int
}

// NewGated creates a gated fetcher bound to t.
func NewGated(t *testing.T) *Gated {
	return &Gated{
		t:       t,
		pending: make(map[string][]chan response),
		calls:   make(map[string]int),
	}
}

// FetchJSON implements fetch.Fetcher.
func (g *Gated) FetchJSON(ctx context.Context, path string) ([]byte, error) {
	ch := make(chan response, 1)
	g.mu.Lock()
	g.pending[path] = append(g.pending[path], ch)
	g.calls[path]++
	g.mu.Unlock()

	select {
	case r := <-ch:
		return r.body, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitPending waits until at least n fetches for path are waiting.
func (g *Gated) AwaitPending(path string, n int) {
	g.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for g.Pending(path) < n {
		if time.Now().After(deadline) {
			g.t.Fatalf("expected %d pending fetches for %s, have %d", n, path, g.Pending(path))
		}
		time.Sleep(time.Millisecond)
	}
}

// Release completes the oldest pending fetch for path with body.
func (g *Gated) Release(path, body string) {
	g.t.Helper()
	g.complete(path, response{body: []byte(body)})
}

// Fail completes the oldest pending fetch for path with err.
func (g *Gated) Fail(path string, err error) {
	g.t.Helper()
	g.complete(path, response{err: err})
}

// NotFound completes the oldest pending fetch for path with a not-found error.
func (g *Gated) NotFound(path string) {
	g.t.Helper()
	g.Fail(path, ferrors.NotFoundError("resource not found").WithContext("fetch_key", path).Build())
}

func (g *Gated) complete(path string, r response) {
	g.t.Helper()
	g.mu.Lock()
	queue := g.pending[path]
	if len(queue) == 0 {
		g.mu.Unlock()
		g.t.Fatalf("no pending fetch for %s", path)
		return
	}
	ch := queue[0]
	g.pending[path] = queue[1:]
	g.mu.Unlock()
	ch <- r
}

// Calls returns how many times path has been fetched.
func (g *Gated) Calls(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[path]
}

// Pending returns the number of unreleased fetches for path.
func (g *Gated) Pending(path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending[path])
}
