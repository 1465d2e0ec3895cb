package render

import (
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "pre": true,
	"ul": true, "ol": true, "table": true, "tr": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLToText converts a rendered page body to readable plain text. Headings
// are prefixed with '#' marks, list items with "- ", and links keep their
// target in angle brackets.
func HTMLToText(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryDecode, "failed to parse HTML").Build()
	}

	w := &textWriter{}
	w.walk(doc)
	return tidy(w.String()), nil
}

type textWriter struct {
	strings.Builder
	pre int
}

func (w *textWriter) newline() {
	s := w.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		w.WriteByte('\n')
		return
	}
	w.WriteString("\n\n")
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			w.WriteByte('\n')
			return
		case "li":
			if s := w.String(); s != "" && !strings.HasSuffix(s, "\n") {
				w.WriteByte('\n')
			}
			w.WriteString("- ")
		case "pre":
			w.newline()
			w.pre++
			defer func() { w.pre-- }()
		}
		if level := headingLevel(n.Data); level > 0 {
			w.newline()
			w.WriteString(strings.Repeat("#", level) + " ")
		} else if blockElements[n.Data] {
			w.newline()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}

	if n.Type == html.ElementNode {
		if n.Data == "a" {
			if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
				w.WriteString(" <" + href + ">")
			}
		}
		if blockElements[n.Data] {
			w.newline()
		}
	}
}

func (w *textWriter) text(data string) {
	if w.pre > 0 {
		w.WriteString(data)
		return
	}
	collapsed := strings.Join(strings.Fields(data), " ")
	leading := data != "" && isSpace(data[0])
	trailing := data != "" && isSpace(data[len(data)-1])
	if (leading || collapsed == "") && w.needsSpace() {
		w.WriteByte(' ')
	}
	if collapsed == "" {
		return
	}
	w.WriteString(collapsed)
	if trailing {
		w.WriteByte(' ')
	}
}

func (w *textWriter) needsSpace() bool {
	s := w.String()
	return s != "" && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// tidy trims trailing spaces and collapses runs of blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
