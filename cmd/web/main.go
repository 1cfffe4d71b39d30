// Web front-end server for go-notest
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/term"

	"github.com/go-while/go-notest/internal/config"
	"github.com/go-while/go-notest/internal/routes"
	"github.com/go-while/go-notest/internal/templates"
	"github.com/go-while/go-notest/internal/web"
)

var (
	// command-line flags
	configFile  string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	templateDir string
	staticDir   string
	debug       bool
	pprofAddr   string
)

var appVersion = "-unset-"

var Prof *prof.Profiler

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "YAML config file (optional)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 11980)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&templateDir, "templates", "", "Page template directory (default: web/templates, embedded templates if missing)")
	flag.StringVar(&staticDir, "static", "", "Static file directory (default: web/static, embedded assets if missing)")
	flag.BoolVar(&debug, "debug", false, "Debug mode: gin debug output and template hot reload")
	flag.StringVar(&pprofAddr, "pprof", "", "Start the pprof web server on this address (e.g. :51111)")
	flag.Parse()

	log.Printf("Starting go-notest: Web Server (version: %s)", appVersion)

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WEB]: Warning: could not read .env: %v", err)
	}

	mainConfig := config.NewDefaultConfig()
	if configFile != "" {
		if err := mainConfig.LoadFile(configFile); err != nil {
			log.Fatalf("[WEB]: %v", err)
		}
	}
	if err := mainConfig.ApplyEnv(); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	webConfig := &mainConfig.Web

	// Override config with command-line flags if provided
	if webport > 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	}
	if webssl {
		webConfig.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		webConfig.CertFile = webcertFile
	}
	if webkeyFile != "" {
		webConfig.KeyFile = webkeyFile
	}
	if templateDir != "" {
		webConfig.TemplateDir = templateDir
	}
	if staticDir != "" {
		webConfig.StaticDir = staticDir
	}
	if debug {
		webConfig.Debug = true
	}
	if err := webConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		Prof.StartMemProfile(5*time.Minute, 30*time.Second)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	if webConfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		gin.ForceConsoleColor()
	} else {
		gin.DisableConsoleColor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pages, err := templates.NewFromDir(webConfig.TemplateDir)
	if err != nil {
		log.Printf("[WEB]: %v, using embedded templates", err)
		pages = templates.Embedded()
	} else if webConfig.Debug {
		go func() {
			if err := templates.Watch(ctx, webConfig.TemplateDir, pages); err != nil {
				log.Printf("[WEB]: template hot reload disabled: %v", err)
			}
		}()
	}
	log.Printf("[WEB]: Serving %d page routes with templates from %s", len(routes.Paths()), pages.Source())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	server := web.NewServer(webConfig, pages, web.NewPageMetrics(registry))

	log.Printf("[WEB]: Starting go-notest web server on %s://localhost:%d", webConfig.Protocol(), webConfig.ListenPort)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-ctx.Done():
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), webConfig.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WEB]: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed")
} // end main
