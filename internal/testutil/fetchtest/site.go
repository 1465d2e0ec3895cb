package fetchtest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page returns a minimal page payload.
func Page(html string) string {
	return `{"html":` + quote(html) + `,"outline":[]}`
}

// Sidebar returns a sidebar payload with a single section linking to hrefs.
func Sidebar(title string, hrefs ...string) string {
	items := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		items = append(items, `{"name":`+quote(h)+`,"href":`+quote(h)+`}`)
	}
	return `{"sections":[{"title":` + quote(title) + `,"items":[` + strings.Join(items, ",") + `]}]}`
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// WriteSite writes files (fetch key -> body) below root the way a static
// build lays them out.
func WriteSite(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for key, body := range files {
		full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(key, "/")))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}
