package routes

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageTitle turns a template identifier into a page title,
// e.g. "note-categories.html" becomes "Note Categories".
func PageTitle(tmpl string) string {
	name := strings.TrimSuffix(path.Base(tmpl), HTMLSuffix)
	switch name {
	case "", ".", "/":
		return ""
	case "404":
		return "Page Not Found"
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	// cases.Caser keeps state and is not safe for concurrent use
	return cases.Title(language.English).String(name)
}
