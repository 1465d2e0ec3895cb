// Package route resolves requested URLs into typed documentation routes and
// derives the JSON fetch keys each route needs.
package route

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// Kind enumerates the closed set of route variants.
type Kind int

const (
	NotFound Kind = iota
	Index
	Docs
	VersionedDocs
	NewsIndex
	Post
	Versions
)

var kindNames = map[Kind]string{
	NotFound:      "not_found",
	Index:         "index",
	Docs:          "docs",
	VersionedDocs: "versioned_docs",
	NewsIndex:     "news_index",
	Post:          "post",
	Versions:      "versions",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Route is the resolved, immutable representation of a requested URL.
// Only the fields meaningful for Kind are set.
type Route struct {
	Kind    Kind
	Version versioning.ID // VersionedDocs
	Section string        // Docs, VersionedDocs
	Slug    string        // Docs, VersionedDocs, Post
}

// Resolve maps a URL (path, optionally with query and fragment) to a Route.
// Resolution is pure; unmatched paths produce NotFound.
func Resolve(raw string) Route {
	segments, ok := split(raw)
	if !ok {
		return Route{Kind: NotFound}
	}
	switch {
	case len(segments) == 0:
		return Route{Kind: Index}
	case segments[0] == "docs" && len(segments) == 4:
		return Route{Kind: VersionedDocs, Version: versioning.ID(segments[1]), Section: segments[2], Slug: segments[3]}
	case segments[0] == "docs" && len(segments) == 3:
		return Route{Kind: Docs, Section: segments[1], Slug: segments[2]}
	case segments[0] == "news" && len(segments) == 2:
		return Route{Kind: Post, Slug: segments[1]}
	case segments[0] == "news" && len(segments) == 1:
		return Route{Kind: NewsIndex}
	case segments[0] == "versions" && len(segments) == 1:
		return Route{Kind: Versions}
	default:
		return Route{Kind: NotFound}
	}
}

// split returns the path segments of raw, each unescaped on its own. The
// query and fragment are cut at the first '?' or '#'. A single trailing slash
// is tolerated; any other empty segment, or a segment that decodes to
// something containing '/', makes the path unmatchable.
func split(raw string) ([]string, bool) {
	path := raw
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		return nil, false
	}
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil, true
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			return nil, false
		}
		dec, err := url.PathUnescape(s)
		if err != nil || dec == "" || strings.Contains(dec, "/") {
			return nil, false
		}
		segments[i] = dec
	}
	return segments, true
}

// URL returns the canonical URL path for the route.
func (r Route) URL() string {
	switch r.Kind {
	case Index:
		return "/"
	case Docs:
		return "/docs/" + r.Section + "/" + r.Slug
	case VersionedDocs:
		return "/docs/" + string(r.Version) + "/" + r.Section + "/" + r.Slug
	case NewsIndex:
		return "/news"
	case Post:
		return "/news/" + r.Slug
	case Versions:
		return "/versions"
	default:
		return ""
	}
}

// ContentPath returns the fetch key of the route's document, if it has one.
func (r Route) ContentPath() (string, bool) {
	switch r.Kind {
	case Docs:
		return "/static/docs/" + r.Section + "/" + r.Slug + ".json", true
	case VersionedDocs:
		return "/static/docs/" + string(r.Version) + "/" + r.Section + "/" + r.Slug + ".json", true
	case Post:
		return "/static/posts/" + r.Slug + ".json", true
	default:
		return "", false
	}
}

// NeedsSidebar reports whether navigating to the route ensures a sidebar.
// News, versions and not-found views carry their own data; posts have no sidebar.
func (r Route) NeedsSidebar() bool {
	switch r.Kind {
	case Index, Docs, VersionedDocs:
		return true
	default:
		return false
	}
}

// SidebarVersion returns the version key the route's sidebar is cached under.
func (r Route) SidebarVersion() versioning.ID {
	if r.Kind == VersionedDocs {
		return r.Version
	}
	return versioning.Latest
}

// DocPath returns "section/slug", the sidebar-relative path used to mark the
// active entry. Empty for routes without docs content.
func (r Route) DocPath() string {
	if r.Kind != Docs && r.Kind != VersionedDocs {
		return ""
	}
	return r.Section + "/" + r.Slug
}

// SidebarPath returns the fetch key of the sidebar for version v.
func SidebarPath(v versioning.ID) string {
	if v.IsLatest() {
		return "/static/docs/sidebar.json"
	}
	return "/static/docs/" + string(v) + "/sidebar.json"
}
