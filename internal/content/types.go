// Package content defines the payloads served for documentation pages and
// sidebars, and decodes them from their JSON form.
package content

// OutlineItem is one heading in a page outline. Children hold the nested
// lower-level headings.
type OutlineItem struct {
	Name     string        `json:"name"`
	Anchor   string        `json:"anchor,omitempty"`
	Children []OutlineItem `json:"children,omitempty"`
}

// MarkdownPage is a rendered documentation page or news post.
type MarkdownPage struct {
	Title    string            `json:"title,omitempty"`
	HTML     string            `json:"html"`
	Markdown string            `json:"markdown,omitempty"`
	Outline  []OutlineItem     `json:"outline,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SidebarItem links to one page of a sidebar section.
type SidebarItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// SidebarSection is a titled, ordered group of sidebar items.
type SidebarSection struct {
	Title string        `json:"title"`
	Items []SidebarItem `json:"items"`
}

// SidebarData is the navigation tree for one docs version.
type SidebarData struct {
	Sections []SidebarSection `json:"sections"`
}
