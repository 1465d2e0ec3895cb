package navigator

import (
	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/resource"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// View tells the renderer what to draw for a snapshot.
type View int

const (
	// ViewLoading: the document or its sidebar is not available yet.
	ViewLoading View = iota
	// ViewStatic: the route renders without a document (index, news, versions, 404).
	ViewStatic
	// ViewContent: the document is ready and, where needed, the sidebar of the
	// route's version is attached.
	ViewContent
	// ViewError: the document failed to load.
	ViewError
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewStatic:
		return "static"
	case ViewContent:
		return "content"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the render-ready state published after every transition.
type Snapshot struct {
	Seq          uint64
	NavigationID string
	URL          string
	Route        route.Route
	View         View

	DocStatus resource.Status
	Document  *content.MarkdownPage
	DocErr    error
	// Stale is set while a reload is pending and Document is the previous page.
	Stale bool

	// Sidebar is only ever the sidebar of Route's version.
	Sidebar        *content.SidebarData
	SidebarVersion versioning.ID
	SidebarLabel   string
	// SidebarErr is the last sidebar failure for Route's version, if any.
	SidebarErr error
}

// Renderable reports whether the snapshot can be shown without a spinner.
func (s Snapshot) Renderable() bool {
	return s.View != ViewLoading
}
