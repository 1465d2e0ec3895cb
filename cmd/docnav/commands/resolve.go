package commands

import (
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/route"
	"git.home.luguber.info/inful/docnav/internal/versioning"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	URLs []string `arg:"" name:"url" help:"Site URL paths to resolve"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	return RunResolve(g.out(), versioning.NewCatalog(cfg.Versions), r.URLs)
}

// RunResolve prints one line per URL: the route kind, its parameters and the
// keys a navigation would fetch.
func RunResolve(w io.Writer, catalog *versioning.Catalog, urls []string) error {
	for _, raw := range urls {
		if _, err := fmt.Fprintln(w, describeRoute(catalog, raw)); err != nil {
			return err
		}
	}
	return nil
}

func describeRoute(catalog *versioning.Catalog, raw string) string {
	r := route.Resolve(raw)
	fields := []string{raw, "kind=" + r.Kind.String()}
	if r.Version != "" {
		fields = append(fields, "version="+string(r.Version))
		if catalog != nil && !catalog.Known(r.Version) {
			fields = append(fields, "unlisted_version=true")
		}
	}
	if r.Section != "" {
		fields = append(fields, "section="+r.Section)
	}
	if r.Slug != "" {
		fields = append(fields, "slug="+r.Slug)
	}
	if key, ok := r.ContentPath(); ok {
		fields = append(fields, "content="+key)
	}
	if r.NeedsSidebar() {
		v := r.SidebarVersion()
		fields = append(fields, "sidebar="+route.SidebarPath(v))
		if catalog != nil {
			fields = append(fields, "label="+catalog.Label(v))
		}
	}
	return strings.Join(fields, " ")
}
