package web

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-notest/internal/routes"
	"github.com/go-while/go-notest/internal/templates"
)

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	// Static files first (highest priority)
	static := s.staticHandler()
	s.Router.GET("/static/*filepath", static)
	s.Router.HEAD("/static/*filepath", static)

	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	if s.Metrics != nil && s.Config.MetricsPath != "" {
		s.Router.GET(s.Config.MetricsPath, s.Metrics.Handler())
	}

	// every page goes through the route table
	s.Router.NoRoute(s.pageHandler)
}

// htmlSuffixRedirect sends any path ending in ".html" to the same path without
// the suffix. It runs before every route, including static files.
func (s *WebServer) htmlSuffixRedirect() gin.HandlerFunc {
	return func(c *gin.Context) {
		target, ok := routes.CanonicalPath(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}
		start := time.Now()
		s.redirect(c, target)
		c.Abort()
		s.Metrics.observe(routes.Redirect.String(), start)
	}
}

func (s *WebServer) redirect(c *gin.Context, target string) {
	location := (&url.URL{Path: target, RawQuery: c.Request.URL.RawQuery}).String()
	c.Redirect(http.StatusMovedPermanently, location)
}

// pageHandler resolves the request against the route table and writes the page.
func (s *WebServer) pageHandler(c *gin.Context) {
	start := time.Now()
	out := routes.Resolve(c.Request.Method, c.Request.URL.Path)

	outcome := out.Kind.String()
	switch out.Kind {
	case routes.Redirect:
		s.redirect(c, out.Target)
	case routes.MethodNotAllowed:
		c.Header("Allow", "GET, HEAD")
		c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	case routes.NotFound:
		s.renderNotFound(c)
	case routes.Render:
		outcome = s.renderPage(c, out)
	}
	s.Metrics.observe(outcome, start)
}

// renderPage renders a resolved page and returns the metrics outcome.
// A note without a template file is a missing page, any other failure is a server error.
func (s *WebServer) renderPage(c *gin.Context, out routes.Outcome) string {
	data := s.getBaseTemplateData(c, routes.PageTitle(out.Template))
	data.NoteID = out.NoteID

	err := s.writeTemplate(c, out.Status, out.Template, data)
	switch {
	case err == nil:
		return routes.Render.String()
	case out.NoteID != "" && errors.Is(err, templates.ErrNotFound):
		if s.Config.Debug {
			log.Printf("[WEB]: note %q has no template: %v", out.NoteID, err)
		}
		s.renderNotFound(c)
		return routes.NotFound.String()
	default:
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return outcomeError
	}
}
