package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-while/go-notest/internal/config"
	"github.com/go-while/go-notest/internal/routes"
	"github.com/go-while/go-notest/internal/templates"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// pageFS has one template per route table entry printing its own name.
func pageFS() fstest.MapFS {
	fsys := fstest.MapFS{
		"error.html":    {Data: []byte(`error:{{.StatusCode}}:{{.Error}}`)},
		"note/abc.html": {Data: []byte(`note:{{.NoteID}}:{{.Title}}`)},
	}
	for _, tmpl := range routes.Templates() {
		fsys[tmpl] = &fstest.MapFile{Data: []byte("page:" + tmpl + ":{{.Title}}:{{.Path}}")}
	}
	return fsys
}

func newTestServer(t *testing.T, fsys fstest.MapFS) (*WebServer, *PageMetrics) {
	t.Helper()
	cfg := config.NewDefaultConfig().Web
	cfg.StaticDir = ""
	metrics := NewPageMetrics(prometheus.NewRegistry())
	return NewServer(&cfg, templates.New(fsys, "test"), metrics), metrics
}

func do(s *WebServer, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestPages_RouteTableEntriesRender(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	for _, path := range routes.Paths() {
		tmpl, _ := routes.Lookup(path)
		w := do(s, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Body.String(), "page:"+tmpl+":"), "%s: %s", path, w.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"), path)
	}
}

func TestPages_RootRendersLogin(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	root := do(s, http.MethodGet, "/")
	login := do(s, http.MethodGet, "/login")
	require.Equal(t, http.StatusOK, root.Code)
	require.Equal(t, http.StatusOK, login.Code)
	// identical apart from the request path echoed by the test template
	assert.Equal(t, "page:login.html:Login:/", root.Body.String())
	assert.Equal(t, "page:login.html:Login:/login", login.Body.String())
}

func TestPages_HTMLSuffixRedirects(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	testCases := []struct {
		method   string
		target   string
		location string
	}{
		{http.MethodGet, "/login.html", "/login"},
		{http.MethodGet, "/note/abc.html", "/note/abc"},
		{http.MethodGet, "/does-not-exist.html", "/does-not-exist"},
		{http.MethodGet, "/static/css/notest.css.html", "/static/css/notest.css"},
		{http.MethodGet, "/settings.html?tab=profile", "/settings?tab=profile"},
		{http.MethodHead, "/trash.html", "/trash"},
		{http.MethodPost, "/login.html", "/login"},
	}
	for _, tc := range testCases {
		w := do(s, tc.method, tc.target)
		assert.Equal(t, http.StatusMovedPermanently, w.Code, tc.target)
		assert.Equal(t, tc.location, w.Header().Get("Location"), tc.target)
		assert.NotContains(t, w.Body.String(), "page:", tc.target)
	}
}

func TestPages_Notes(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	w := do(s, http.MethodGet, "/note/abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "note:abc:Abc", w.Body.String())

	// a note without a template file is a missing page
	w = do(s, http.MethodGet, "/note/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "page:404.html:Page Not Found:/note/missing", w.Body.String())

	w = do(s, http.MethodGet, "/note/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPages_NotFound(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	for _, path := range []string{"/does-not-exist", "/xyz", "/login/", "/static", "/favicon.ico"} {
		w := do(s, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "page:404.html:Page Not Found:"+path, w.Body.String(), path)
	}
}

func TestPages_NotFoundWithoutTemplate(t *testing.T) {
	fsys := pageFS()
	delete(fsys, routes.NotFoundTemplate)
	s, _ := newTestServer(t, fsys)

	w := do(s, http.MethodGet, "/xyz")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404 page not found", w.Body.String())
}

func TestPages_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	w := do(s, http.MethodPost, "/login")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))

	w = do(s, http.MethodHead, "/login")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPages_TemplateErrors(t *testing.T) {
	fsys := pageFS()
	delete(fsys, "trash.html")
	fsys["tags.html"] = &fstest.MapFile{Data: []byte(`{{.NoSuchField}}`)}
	s, metrics := newTestServer(t, fsys)

	w := do(s, http.MethodGet, "/trash")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error:500:Template error", w.Body.String())

	w = do(s, http.MethodGet, "/tags")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error:500:Template error", w.Body.String())

	delete(fsys, "error.html")
	s, _ = newTestServer(t, fsys)
	w = do(s, http.MethodGet, "/trash")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error: Template error", w.Body.String())

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeError)))
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t, pageFS())

	for _, path := range []string{"/login", "/login.html", "/xyz"} {
		w := do(s, http.MethodGet, path)
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"), path)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), path)
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"), path)
	}
}

func TestStaticFiles(t *testing.T) {
	s, metrics := newTestServer(t, pageFS())

	w := do(s, http.MethodGet, "/static/css/notest.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "font-family")

	w = do(s, http.MethodGet, "/static/")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodGet, "/static/missing.css")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues(outcomeStatic)))
}

func TestStaticFilesFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/app.js", []byte("console.log(1)"), 0o644))

	cfg := config.NewDefaultConfig().Web
	cfg.StaticDir = dir
	s := NewServer(&cfg, templates.New(pageFS(), "test"), nil)

	w := do(s, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
}

func TestListEmbeddedFiles(t *testing.T) {
	files, err := ListEmbeddedFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "static/css/notest.css")
}

func TestPing(t *testing.T) {
	s, _ := newTestServer(t, pageFS())
	w := do(s, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestMetrics(t *testing.T) {
	s, metrics := newTestServer(t, pageFS())

	do(s, http.MethodGet, "/login")
	do(s, http.MethodGet, "/note/abc")
	do(s, http.MethodGet, "/login.html")
	do(s, http.MethodGet, "/xyz")
	do(s, http.MethodGet, "/note/missing")
	do(s, http.MethodDelete, "/notes")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("render")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("redirect")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.requests.WithLabelValues("method_not_allowed")))

	w := do(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `notest_page_requests_total{outcome="render"} 2`)
	assert.Contains(t, w.Body.String(), "notest_page_render_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := config.NewDefaultConfig().Web
	cfg.MetricsPath = ""
	s := NewServer(&cfg, templates.New(pageFS(), "test"), NewPageMetrics(nil))

	w := do(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// nil metrics never panic
	s = NewServer(&cfg, templates.New(pageFS(), "test"), nil)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/login").Code)
	assert.Equal(t, http.StatusMovedPermanently, do(s, http.MethodGet, "/login.html").Code)
}

func TestEmbeddedTemplates(t *testing.T) {
	cfg := config.NewDefaultConfig().Web
	s := NewServer(&cfg, templates.Embedded(), nil)

	root := do(s, http.MethodGet, "/")
	login := do(s, http.MethodGet, "/login")
	require.Equal(t, http.StatusOK, root.Code)
	assert.Equal(t, login.Body.String(), root.Body.String())

	w := do(s, http.MethodGet, "/note-categories")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Note Categories - notest</title>")

	w = do(s, http.MethodGet, "/note/welcome")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-note="welcome"`)

	w = do(s, http.MethodGet, "/nothing-here")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "<code>/nothing-here</code>")
}

func TestConcurrentRequests(t *testing.T) {
	s, metrics := newTestServer(t, pageFS())
	paths := append(routes.Paths(), "/note/abc", "/xyz")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, p := range paths {
				do(s, http.MethodGet, p)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(8*(len(paths)-1)), testutil.ToFloat64(metrics.requests.WithLabelValues("render")))
	assert.Equal(t, float64(8), testutil.ToFloat64(metrics.requests.WithLabelValues("not_found")))
}

func TestShutdownWithoutStart(t *testing.T) {
	s, _ := newTestServer(t, pageFS())
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestStartSSLWithoutCert(t *testing.T) {
	cfg := config.NewDefaultConfig().Web
	cfg.SSL = true
	s := NewServer(&cfg, templates.New(pageFS(), "test"), nil)
	assert.Error(t, s.Start())
}
