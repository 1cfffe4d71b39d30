// Package config provides configuration management for go-notest.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultListenPort      = 11980
	DefaultTemplateDir     = "web/templates"
	DefaultStaticDir       = "web/static"
	DefaultMetricsPath     = "/metrics"
	DefaultShutdownTimeout = 10 * time.Second

	// environment overrides, also read from .env
	EnvWebPort     = "NOTEST_WEB_PORT"
	EnvDebug       = "NOTEST_DEBUG"
	EnvTemplateDir = "NOTEST_TEMPLATE_DIR"
	EnvStaticDir   = "NOTEST_STATIC_DIR"
)

// MainConfig holds the main configuration for go-notest
type MainConfig struct {
	Web        WebConfig `json:"web" yaml:"web"`
	AppVersion string    `json:"app_version" yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort      int           `json:"listen_port" yaml:"listen_port"`
	SSL             bool          `json:"ssl" yaml:"ssl"`
	CertFile        string        `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile         string        `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	TemplateDir     string        `json:"template_dir" yaml:"template_dir"` // falls back to the embedded templates when missing
	StaticDir       string        `json:"static_dir" yaml:"static_dir"`     // falls back to the embedded assets when missing
	MetricsPath     string        `json:"metrics_path" yaml:"metrics_path"` // empty disables the metrics endpoint
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	Debug           bool          `json:"debug" yaml:"debug"` // hot reloads templates and enables gin debug mode
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort:      DefaultListenPort,
			TemplateDir:     DefaultTemplateDir,
			StaticDir:       DefaultStaticDir,
			MetricsPath:     DefaultMetricsPath,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg.
// Keys missing from the file keep their current values.
func (cfg *MainConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	log.Printf("[CFG]: loaded %s", path)
	return nil
}

// ApplyEnv overlays NOTEST_* environment variables onto cfg.
func (cfg *MainConfig) ApplyEnv() error {
	if v := os.Getenv(EnvWebPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWebPort, v, err)
		}
		cfg.Web.ListenPort = p
		log.Printf("[CFG]: Port overridden by environment variable: %d", p)
	}
	if v := os.Getenv(EnvDebug); v != "" {
		d, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		cfg.Web.Debug = d
	}
	if v := os.Getenv(EnvTemplateDir); v != "" {
		cfg.Web.TemplateDir = v
	}
	if v := os.Getenv(EnvStaticDir); v != "" {
		cfg.Web.StaticDir = v
	}
	return nil
}

// Validate checks the web configuration before the server starts.
func (wc *WebConfig) Validate() error {
	if wc.ListenPort < 1024 || wc.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1024 and 65535)", wc.ListenPort)
	}
	if wc.SSL && (wc.CertFile == "" || wc.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if wc.MetricsPath != "" && !strings.HasPrefix(wc.MetricsPath, "/") {
		return fmt.Errorf("invalid metrics_path %q: must start with /", wc.MetricsPath)
	}
	if wc.ShutdownTimeout <= 0 {
		wc.ShutdownTimeout = DefaultShutdownTimeout
	}
	return nil
}

// Protocol returns "https" when SSL is enabled and "http" otherwise.
func (wc *WebConfig) Protocol() string {
	if wc.SSL {
		return "https"
	}
	return "http"
}
