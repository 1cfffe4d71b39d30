// Package routes maps request paths of the notest front-end to page templates.
package routes

import "sort"

// NotFoundTemplate is rendered for every path that matches no route.
const NotFoundTemplate = "404.html"

// notePrefix starts the parametrized note page family.
const notePrefix = "/note/"

// pageRoutes is the Route Table: canonical path to template identifier.
// It is built once at init and only read afterwards.
var pageRoutes = map[string]string{
	"/":                  "login.html",
	"/login":             "login.html",
	"/register":          "register.html",
	"/notes":             "notes.html",
	"/dashboard":         "dashboard.html",
	"/note-categories":   "note-categories.html",
	"/note-share":        "note-share.html",
	"/profile-edit":      "profile-edit.html",
	"/settings":          "settings.html",
	"/starred-notes":     "starred-notes.html",
	"/tags":              "tags.html",
	"/trash":             "trash.html",
	"/note-editor-modal": "note-editor-modal.html",
}

// fixedPages are matched before the note family and the table fallback.
var fixedPages = []struct {
	Path     string
	Template string
}{
	{"/", "login.html"},
	{"/login", "login.html"},
	{"/register", "register.html"},
	{"/dashboard", "dashboard.html"},
	{"/notes", "notes.html"},
	{"/note-editor-modal", "note-editor-modal.html"},
}

// Lookup returns the template mapped to a canonical path in the Route Table.
func Lookup(path string) (string, bool) {
	tmpl, ok := pageRoutes[path]
	return tmpl, ok
}

// Paths returns the Route Table keys in sorted order.
func Paths() []string {
	paths := make([]string, 0, len(pageRoutes))
	for p := range pageRoutes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Templates returns every template the table refers to, plus the not-found page, sorted and unique.
func Templates() []string {
	seen := map[string]bool{NotFoundTemplate: true}
	for _, tmpl := range pageRoutes {
		seen[tmpl] = true
	}
	out := make([]string, 0, len(seen))
	for tmpl := range seen {
		out = append(out, tmpl)
	}
	sort.Strings(out)
	return out
}
