package events

import (
	"strings"
	"time"
)

// SourceChanged reports that files in a local static build changed. Paths are
// relative to the watched root, using forward slashes.
type SourceChanged struct {
	Paths      []string
	DetectedAt time.Time
}

// SidebarAffected reports whether any changed path is a sidebar payload.
func (e SourceChanged) SidebarAffected() bool {
	for _, p := range e.Paths {
		if strings.HasSuffix(p, "sidebar.json") {
			return true
		}
	}
	return false
}
