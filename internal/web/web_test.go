package web

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
)

func TestTemplates_ContainsPages(t *testing.T) {
	ts := Templates()
	for _, name := range []string{"list", "form", "error"} {
		if ts.Lookup(name) == nil {
			t.Fatalf("template %q missing from embedded set", name)
		}
	}
}

func TestTemplates_ErrorPageRenders(t *testing.T) {
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, "error", map[string]any{
		"Title":   "Chyba",
		"Message": "Zkuste to znovu.",
	})
	if err != nil {
		t.Fatalf("render error page: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Chyba") || !strings.Contains(out, "Zkuste to znovu.") {
		t.Fatalf("rendered page missing content:\n%s", out)
	}
}

func TestStaticFS_Assets(t *testing.T) {
	for _, name := range []string{"app.css", "service-worker.js"} {
		if _, err := fs.Stat(StaticFS(), name); err != nil {
			t.Fatalf("static asset %q missing: %v", name, err)
		}
	}
}
