package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Rendered is the result of rendering a Markdown body.
type Rendered struct {
	Title   string
	HTML    string
	Outline []OutlineItem
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Render converts a Markdown body to HTML and extracts its outline. The first
// level-1 heading becomes the title; level 2 and deeper headings form the
// outline, nested by level.
func Render(body []byte) (Rendered, error) {
	root := md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, body, root); err != nil {
		return Rendered{}, err
	}

	out := Rendered{HTML: buf.String()}
	var headings []heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		name := nodeText(h, body)
		if h.Level == 1 {
			if out.Title == "" {
				out.Title = name
			}
			return gmast.WalkSkipChildren, nil
		}
		headings = append(headings, heading{level: h.Level, item: OutlineItem{Name: name, Anchor: headingID(h)}})
		return gmast.WalkSkipChildren, nil
	})
	out.Outline = nest(headings)
	return out, nil
}

type heading struct {
	level int
	item  OutlineItem
}

// nest turns a flat heading list into a tree. A heading becomes a child of
// the closest preceding heading with a lower level.
func nest(hs []heading) []OutlineItem {
	var build func(i, parentLevel int) ([]OutlineItem, int)
	build = func(i, parentLevel int) ([]OutlineItem, int) {
		var items []OutlineItem
		for i < len(hs) && hs[i].level > parentLevel {
			item := hs[i].item
			level := hs[i].level
			item.Children, i = build(i+1, level)
			items = append(items, item)
		}
		return items, i
	}
	items, _ := build(0, 0)
	return items
}

func headingID(h *gmast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	default:
		return ""
	}
}

func nodeText(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *gmast.String:
			sb.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
