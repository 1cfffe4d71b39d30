package web

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/go-while/go-notest/internal/config"
	"github.com/go-while/go-notest/internal/routes"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	errorTemplate   = "error.html"
)

// getBaseTemplateData creates a TemplateData struct with common information
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	return TemplateData{
		Title:       title,
		Path:        c.Request.URL.Path,
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		AppVersion:  config.AppVersion,
		Port:        s.GetPort(),
	}
}

// writeTemplate renders a template into a buffer and sends it with status.
// On error nothing has been written yet, so the caller can still respond.
func (s *WebServer) writeTemplate(c *gin.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := s.Pages.Render(&buf, name, data); err != nil {
		return err
	}
	c.Data(status, htmlContentType, buf.Bytes())
	return nil
}

// renderNotFound renders the not-found page with status 404
func (s *WebServer) renderNotFound(c *gin.Context) {
	data := s.getBaseTemplateData(c, routes.PageTitle(routes.NotFoundTemplate))
	if err := s.writeTemplate(c, http.StatusNotFound, routes.NotFoundTemplate, data); err != nil {
		log.Printf("[WEB]: Error rendering template %s: %v", routes.NotFoundTemplate, err)
		c.String(http.StatusNotFound, "404 page not found")
	}
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	log.Printf("[ERROR]:internal/web: Error %d: %s - %s", statusCode, message, errstring)
	errorData := ErrorPageData{
		TemplateData: s.getBaseTemplateData(c, "Error"),
		Error:        message,
		StatusCode:   statusCode,
	}
	if err := s.writeTemplate(c, statusCode, errorTemplate, errorData); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
	}
}
