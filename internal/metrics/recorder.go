package metrics

import "time"

// FetchKind labels the two resource shapes the core fetches.
type FetchKind string

const (
	FetchDocument FetchKind = "document"
	FetchSidebar  FetchKind = "sidebar"
)

// LookupResult enumerates sidebar cache lookup outcomes.
type LookupResult string

const (
	LookupHit   LookupResult = "hit"   // cached entry valid for the requested version
	LookupMiss  LookupResult = "miss"  // fetch started
	LookupDedup LookupResult = "dedup" // fetch for the same version already in flight
)

// Recorder defines observability hooks for the navigation core.
type Recorder interface {
	ObserveFetchDuration(kind FetchKind, d time.Duration, success bool)
	IncSidebarLookup(result LookupResult)
	IncStaleDiscard(kind FetchKind)
	IncNavigation(route string)
	IncDocumentOutcome(status string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(FetchKind, time.Duration, bool) {}
func (NoopRecorder) IncSidebarLookup(LookupResult)                       {}
func (NoopRecorder) IncStaleDiscard(FetchKind)                           {}
func (NoopRecorder) IncNavigation(string)                                {}
func (NoopRecorder) IncDocumentOutcome(string)                           {}
