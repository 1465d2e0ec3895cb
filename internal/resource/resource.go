// Package resource tracks the asynchronously loaded document of the current
// navigation.
//
// Each navigation replaces the slot's resource. The replaced resource is
// discarded: its fetch keeps running to completion, but the result is never
// committed and nobody is notified.
package resource

import (
	"sync"

	"git.home.luguber.info/inful/docnav/internal/content"
)

// Status is the lifecycle state of a Resource.
type Status int

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a point-in-time view of a Resource.
type State struct {
	Status Status
	Page   *content.MarkdownPage // Ready only
	Err    error                 // Failed only
}

// Resource is one document fetch bound to the navigation that started it.
type Resource struct {
	key        string
	generation uint64

	mu    sync.Mutex
	state State
	live  bool
}

func newResource(key string, generation uint64) *Resource {
	return &Resource{
		key:        key,
		generation: generation,
		live:       true,
	}
}

// Key returns the fetch key.
func (r *Resource) Key() string { return r.key }

// Generation returns the slot generation the resource was created under.
func (r *Resource) Generation() uint64 { return r.generation }

// State returns the current state.
func (r *Resource) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Live reports whether the resource is still the slot's current one.
func (r *Resource) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

func (r *Resource) discard() {
	r.mu.Lock()
	r.live = false
	r.mu.Unlock()
}

// commit stores the result unless the resource has been discarded.
func (r *Resource) commit(st State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.live {
		return false
	}
	r.state = st
	return true
}
