// Package web provides the HTTP server of the notest front-end.
//
// Files:
//   - webserver.go: server setup, middleware and lifecycle
//   - webserver_core_routes.go: route registration and the page dispatcher
//   - web_utils.go: template data and render helpers
//   - web_metrics.go: Prometheus page metrics
//   - embedded_static.go: static assets
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	"github.com/go-while/go-notest/internal/config"
)

// PageRenderer renders a named template. It is implemented by *templates.Renderer.
type PageRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// WebServer represents the web server
type WebServer struct {
	Router    *gin.Engine
	Config    *config.WebConfig
	Pages     PageRenderer
	Metrics   *PageMetrics
	StartTime time.Time // Track server start time for uptime calculations

	httpServer *http.Server
}

// TemplateData is passed to every page template
type TemplateData struct {
	Title       string
	Path        string
	NoteID      string
	CurrentTime string
	AppVersion  string
	Port        int
}

// ErrorPageData is passed to the error template
type ErrorPageData struct {
	TemplateData
	Error      string
	StatusCode int
}

// NewServer creates a new web server instance.
// metrics may be nil to disable the metrics endpoint and counters.
func NewServer(webconfig *config.WebConfig, pages PageRenderer, metrics *PageMetrics) *WebServer {
	router := gin.New()
	// only the page router decides about redirects
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Configure Gin to trust reverse proxy headers
	router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})

	server := &WebServer{
		Router:  router,
		Config:  webconfig,
		Pages:   pages,
		Metrics: metrics,
		httpServer: &http.Server{
			Addr:              ":" + strconv.Itoa(webconfig.ListenPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Use(gin.Recovery(), server.ApacheLogFormat())
	router.Use(secure.New(server.secureConfig()))
	router.Use(server.htmlSuffixRedirect())

	server.setupRoutes()
	return server
}

// secureConfig configures security headers based on SSL setup
func (s *WebServer) secureConfig() secure.Config {
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if s.Config.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	return secureConfig
}

// Start starts the web server with SSL support if configured.
// It returns http.ErrServerClosed after Shutdown.
func (s *WebServer) Start() error {
	s.StartTime = time.Now() // Set the start time for uptime calculations
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", s.httpServer.Addr)
		return s.httpServer.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for open requests until ctx ends.
func (s *WebServer) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	return nil
}

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}

func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}
