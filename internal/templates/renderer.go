// Package templates loads and renders the page templates served by the web front-end.
// Templates are opaque HTML files; each one is parsed on its own with html/template.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a template identifier names no file.
var ErrNotFound = errors.New("template not found")

// Renderer parses templates from a filesystem and caches the result.
type Renderer struct {
	fsys   fs.FS
	source string // for log lines only
	funcs  template.FuncMap

	mux    sync.RWMutex
	parsed map[string]*template.Template
}

// New returns a Renderer reading templates from fsys.
func New(fsys fs.FS, source string) *Renderer {
	return &Renderer{
		fsys:   fsys,
		source: source,
		funcs: template.FuncMap{
			"year":  func() int { return time.Now().Year() },
			"lower": strings.ToLower,
		},
		parsed: make(map[string]*template.Template),
	}
}

// NewFromDir returns a Renderer for templates below dir.
func NewFromDir(dir string) (*Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template dir %s: not a directory", dir)
	}
	return New(os.DirFS(dir), dir), nil
}

// Source describes where templates are read from.
func (r *Renderer) Source() string {
	return r.source
}

// Lookup returns the parsed template for name, parsing it on first use.
func (r *Renderer) Lookup(name string) (*template.Template, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	r.mux.RLock()
	tmpl, ok := r.parsed[name]
	r.mux.RUnlock()
	if ok {
		return tmpl, nil
	}

	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read template %q: %w", name, err)
	}
	tmpl, err = template.New(name).Funcs(r.funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	r.mux.Lock()
	r.parsed[name] = tmpl
	r.mux.Unlock()
	return tmpl, nil
}

// Render executes template name with data and writes the output to w.
// Nothing is written when parsing or execution fails.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, err := r.Lookup(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Invalidate drops every cached template.
func (r *Renderer) Invalidate() {
	r.mux.Lock()
	n := len(r.parsed)
	r.parsed = make(map[string]*template.Template)
	r.mux.Unlock()
	if n > 0 {
		log.Printf("[TPL]: dropped %d cached templates from %s", n, r.source)
	}
}

// Cached returns the number of parsed templates held in the cache.
func (r *Renderer) Cached() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.parsed)
}
