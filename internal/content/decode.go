package content

import (
	"bytes"
	"encoding/json"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

type rawPage struct {
	Title    string            `json:"title"`
	HTML     *string           `json:"html"`
	Markdown *string           `json:"markdown"`
	Outline  []OutlineItem     `json:"outline"`
	Metadata map[string]string `json:"metadata"`
}

type rawSidebar struct {
	Sections *[]SidebarSection `json:"sections"`
}

// DecodePage decodes a page payload. At least one of "html" or "markdown"
// must be present; when only markdown is given the HTML and outline are
// rendered from it.
func DecodePage(data []byte) (*MarkdownPage, error) {
	var raw rawPage
	if err := unmarshalObject(data, &raw); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDecode, "invalid page payload").Build()
	}
	if raw.HTML == nil && raw.Markdown == nil {
		return nil, ferrors.DecodeError("page payload has neither html nor markdown").Build()
	}

	page := &MarkdownPage{
		Title:    raw.Title,
		Outline:  raw.Outline,
		Metadata: raw.Metadata,
	}
	if raw.Markdown != nil {
		page.Markdown = *raw.Markdown
	}
	if raw.HTML != nil {
		page.HTML = *raw.HTML
	} else {
		rendered, err := Render([]byte(page.Markdown))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryDecode, "render markdown").Build()
		}
		page.HTML = rendered.HTML
		if page.Outline == nil {
			page.Outline = rendered.Outline
		}
		if page.Title == "" {
			page.Title = rendered.Title
		}
	}
	return page, nil
}

// DecodeSidebar decodes a sidebar payload. The "sections" list is required.
func DecodeSidebar(data []byte) (*SidebarData, error) {
	var raw rawSidebar
	if err := unmarshalObject(data, &raw); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryDecode, "invalid sidebar payload").Build()
	}
	if raw.Sections == nil {
		return nil, ferrors.DecodeError("sidebar payload has no sections").Build()
	}
	for i, sec := range *raw.Sections {
		for _, it := range sec.Items {
			if it.Href == "" {
				return nil, ferrors.DecodeError("sidebar item without href").
					WithContext("section", i).
					WithContext("name", it.Name).
					Build()
			}
		}
	}
	return &SidebarData{Sections: *raw.Sections}, nil
}

// unmarshalObject rejects anything that is not a single JSON object.
func unmarshalObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ferrors.DecodeError("payload is not a JSON object").Build()
	}
	return json.Unmarshal(trimmed, v)
}
