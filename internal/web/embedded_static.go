package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed static/*
var EmbeddedStaticFS embed.FS

// ListEmbeddedFiles returns a list of all embedded static files for debugging
func ListEmbeddedFiles() ([]string, error) {
	var files []string
	err := fs.WalkDir(EmbeddedStaticFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// staticRoot returns the configured static directory, or the embedded assets
// when that directory does not exist.
func (s *WebServer) staticRoot() http.FileSystem {
	if dir := s.Config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			log.Printf("[WEB]: Serving static files from %s", dir)
			return http.Dir(dir)
		}
	}
	staticFS, err := fs.Sub(EmbeddedStaticFS, "static")
	if err != nil {
		panic("Failed to create embedded static filesystem: " + err.Error())
	}
	return http.FS(staticFS)
}

// staticHandler returns a Gin handler for /static/*filepath
func (s *WebServer) staticHandler() gin.HandlerFunc {
	fileServer := http.FileServer(s.staticRoot())

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Param("filepath")
		if path == "" || strings.HasSuffix(path, "/") {
			// no directory listings
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		req := c.Request.Clone(c.Request.Context())
		req.URL.Path = path
		req.URL.RawPath = ""

		// Set some cache headers for static content
		c.Header("Cache-Control", "public, max-age=3600") // browser caches an hour

		fileServer.ServeHTTP(c.Writer, req)
		s.Metrics.observe(outcomeStatic, start)
	}
}
