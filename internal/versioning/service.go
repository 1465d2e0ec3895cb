package versioning

import (
	"strings"

	"git.home.luguber.info/inful/docnav/internal/config"
)

// Catalog is the set of documentation versions a site publishes.
//
// Unversioned documentation URLs serve the development docs, labelled with the
// Next version; the Latest release is the newest tagged set.
type Catalog struct {
	latest   ID
	next     ID
	versions []Version
}

// DefaultCatalog returns the catalog of the default configuration.
func DefaultCatalog() *Catalog {
	return NewCatalog(config.VersionsConfig{
		Latest: config.DefaultLatestVersion,
		Next:   config.DefaultNextVersion,
		List:   []string{config.DefaultNextVersion, config.DefaultLatestVersion},
	})
}

// NewCatalog builds a catalog from the versions section of the configuration.
func NewCatalog(cfg config.VersionsConfig) *Catalog {
	c := &Catalog{latest: ID(cfg.Latest), next: ID(cfg.Next)}
	seen := make(map[ID]bool, len(cfg.List))
	for _, raw := range cfg.List {
		id := ID(strings.TrimSpace(raw))
		if id.IsLatest() || seen[id] {
			continue
		}
		seen[id] = true
		c.versions = append(c.versions, Version{
			ID:          id,
			DisplayName: displayName(id, c.next),
			IsLatest:    id == c.latest,
			IsNext:      id == c.next,
		})
	}
	return c
}

// LatestRelease returns the identifier of the newest tagged release.
func (c *Catalog) LatestRelease() ID { return c.latest }

// Next returns the identifier used for the unversioned (development) docs.
func (c *Catalog) Next() ID { return c.next }

// Versions returns the published versions in configured order.
func (c *Catalog) Versions() []Version {
	out := make([]Version, len(c.versions))
	copy(out, c.versions)
	return out
}

// Label returns the sidebar label for a requested version: the version itself
// for versioned docs, the Next label for the unversioned set.
func (c *Catalog) Label(id ID) string {
	if id.IsLatest() {
		return string(c.next)
	}
	return string(id)
}

// Known reports whether id is listed in the catalog.
func (c *Catalog) Known(id ID) bool {
	for _, v := range c.versions {
		if v.ID == id {
			return true
		}
	}
	return false
}

func displayName(id, next ID) string {
	if id == next {
		return "Next (unreleased)"
	}
	return strings.TrimPrefix(string(id), "v")
}
