// Package web holds the embedded presentation assets: the html/template set
// the handlers render into, and the static files (stylesheet, service
// worker) served directly. Everything is compiled into the binary via
// embed.FS so the deployment stays a single file next to its database.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded template set. The set contains the page
// templates ("list", "form", "error") plus the shared layout partials;
// install it on the engine with SetHTMLTemplate. Panics on a malformed
// embedded template, which is a build defect, not a runtime condition.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// StaticFS returns the embedded static asset tree rooted at static/, for
// mounting under the /static route and for serving the service worker from
// the site root.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
