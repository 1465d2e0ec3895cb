package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docnav/internal/content"
	"git.home.luguber.info/inful/docnav/internal/navigator"
	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// TextRenderer writes snapshots as plain text.
type TextRenderer struct {
	out     io.Writer
	catalog *versioning.Catalog
	// ShowLoading also writes loading snapshots.
	ShowLoading bool
	// Outline appends the page outline after the body.
	Outline bool

	mu    sync.Mutex
	title cases.Caser
}

// NewTextRenderer writes to out. catalog feeds the versions page.
func NewTextRenderer(out io.Writer, catalog *versioning.Catalog) *TextRenderer {
	return &TextRenderer{
		out:     out,
		catalog: catalog,
		title:   cases.Title(language.English),
	}
}

// Render implements Renderer.
func (r *TextRenderer) Render(_ context.Context, s navigator.Snapshot) error {
	if s.View == navigator.ViewLoading && !r.ShowLoading {
		return nil
	}
	var b strings.Builder
	r.mu.Lock()
	r.write(&b, s)
	r.mu.Unlock()
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *TextRenderer) write(b *strings.Builder, s navigator.Snapshot) {
	fmt.Fprintf(b, "== %s ==\n", r.heading(s))

	if s.Sidebar != nil {
		r.writeSidebar(b, s)
	}
	if s.SidebarErr != nil {
		fmt.Fprintf(b, "! sidebar unavailable: %v\n", s.SidebarErr)
	}

	switch s.View {
	case navigator.ViewLoading:
		b.WriteString("Loading...\n")
	case navigator.ViewError:
		fmt.Fprintf(b, "Failed to load %s: %v\n", s.URL, s.DocErr)
	case navigator.ViewStatic:
		r.writeStatic(b, s)
	case navigator.ViewContent:
		if s.Stale {
			b.WriteString("(reloading)\n")
		}
		r.writeDocument(b, s.Document)
	}
	b.WriteString("\n")
}

func (r *TextRenderer) heading(s navigator.Snapshot) string {
	if s.Document != nil && s.Document.Title != "" {
		return s.Document.Title
	}
	switch s.Route.Kind {
	case route.Index:
		return "Home"
	case route.NewsIndex:
		return "News"
	case route.Versions:
		return "Versions"
	case route.NotFound:
		return "Page not found"
	default:
		return r.slugTitle(s.Route.Slug)
	}
}

// slugTitle turns "getting-started" into "Getting Started".
func (r *TextRenderer) slugTitle(slug string) string {
	return r.title.String(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
}

func (r *TextRenderer) writeSidebar(b *strings.Builder, s navigator.Snapshot) {
	active := s.Route.DocPath()
	fmt.Fprintf(b, "[sidebar %s]\n", s.SidebarLabel)
	for _, sec := range s.Sidebar.Sections {
		fmt.Fprintf(b, "  %s\n", sec.Title)
		for _, it := range sec.Items {
			marker := " "
			if active != "" && strings.TrimPrefix(it.Href, "/") == active {
				marker = ">"
			}
			fmt.Fprintf(b, "  %s %s\n", marker, it.Name)
		}
	}
}

func (r *TextRenderer) writeStatic(b *strings.Builder, s navigator.Snapshot) {
	switch s.Route.Kind {
	case route.Versions:
		if r.catalog == nil {
			return
		}
		if latest := r.catalog.LatestRelease(); latest != "" {
			fmt.Fprintf(b, "Latest release: /docs/%s/\n", latest)
		}
		for _, v := range r.catalog.Versions() {
			suffix := ""
			if v.IsLatest {
				suffix = " (latest)"
			}
			fmt.Fprintf(b, "- %s%s: /docs/%s/\n", v.DisplayName, suffix, v.ID)
		}
	case route.NotFound:
		fmt.Fprintf(b, "Nothing lives at %s.\n", s.URL)
	case route.NewsIndex:
		b.WriteString("Release notes and announcements.\n")
	}
}

func (r *TextRenderer) writeDocument(b *strings.Builder, page *content.MarkdownPage) {
	if page == nil {
		return
	}
	body, err := HTMLToText(page.HTML)
	if err != nil {
		body = page.Markdown
	}
	b.WriteString(body)
	b.WriteString("\n")
	if !r.Outline || len(page.Outline) == 0 {
		return
	}
	b.WriteString("\nOn this page:\n")
	writeOutline(b, page.Outline, 1)
}

func writeOutline(b *strings.Builder, items []content.OutlineItem, depth int) {
	for _, it := range items {
		fmt.Fprintf(b, "%s- %s\n", strings.Repeat("  ", depth), it.Name)
		writeOutline(b, it.Children, depth+1)
	}
}
