package routes

import (
	"net/http"
	"strings"
)

// HTMLSuffix is stripped from every request path by a permanent redirect.
const HTMLSuffix = ".html"

// Kind tells the web layer what to do with a request.
type Kind int

const (
	Render Kind = iota
	Redirect
	NotFound
	MethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one request.
type Outcome struct {
	Kind     Kind
	Status   int
	Template string // Render and NotFound
	Target   string // Redirect
	NoteID   string // set for the /note/<id> family
}

// CanonicalPath strips a trailing ".html" from path.
// redirect reports whether the suffix was present.
func CanonicalPath(path string) (canonical string, redirect bool) {
	if !strings.HasSuffix(path, HTMLSuffix) {
		return path, false
	}
	canonical = strings.TrimSuffix(path, HTMLSuffix)
	// never hand out a protocol-relative Location
	if strings.HasPrefix(canonical, "//") {
		canonical = "/" + strings.TrimLeft(canonical, "/")
	}
	if canonical == "" {
		canonical = "/"
	}
	return canonical, true
}

// Resolve applies the routing rules in order:
// .html redirect, fixed pages, the note family, then the Route Table.
func Resolve(method, path string) Outcome {
	if target, ok := CanonicalPath(path); ok {
		return Outcome{Kind: Redirect, Status: http.StatusMovedPermanently, Target: target}
	}
	if method != http.MethodGet && method != http.MethodHead {
		return Outcome{Kind: MethodNotAllowed, Status: http.StatusMethodNotAllowed}
	}
	for _, page := range fixedPages {
		if page.Path == path {
			return render(page.Template, "")
		}
	}
	if id, ok := strings.CutPrefix(path, notePrefix); ok && id != "" {
		if !validNoteID(id) {
			return notFound()
		}
		return render(NoteTemplate(id), id)
	}
	if tmpl, ok := Lookup(path); ok {
		return render(tmpl, "")
	}
	return notFound()
}

// NoteTemplate is the template identifier for a note page.
func NoteTemplate(id string) string {
	return "note/" + id + HTMLSuffix
}

func validNoteID(id string) bool {
	for _, seg := range strings.Split(id, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func render(tmpl, noteID string) Outcome {
	return Outcome{Kind: Render, Status: http.StatusOK, Template: tmpl, NoteID: noteID}
}

func notFound() Outcome {
	return Outcome{Kind: NotFound, Status: http.StatusNotFound, Template: NotFoundTemplate}
}
