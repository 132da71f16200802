package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toolbridge/connectorkit/agentrpc"
	"github.com/toolbridge/connectorkit/api"
	"github.com/toolbridge/connectorkit/config"
	"github.com/toolbridge/connectorkit/connector"
	"github.com/toolbridge/connectorkit/connector/vault"
	"github.com/toolbridge/connectorkit/session"
)

const serverVersion = "1.0.0"

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to YAML configuration file")
		port       = flag.String("port", "", "Port to run the HTTP server on (overrides config)")
		stdio      = flag.Bool("stdio", false, "Serve the agent protocol over stdio instead of HTTP")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("ConnectorKit - Web API connectors with lexical search for agents\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                               # Start HTTP server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --config connectors.yaml      # Load connector catalog from file\n", os.Args[0])
		fmt.Printf("  %s --stdio                       # Run as an agent protocol server on stdio\n", os.Args[0])
		return
	}

	// Handle version flag
	if *version {
		fmt.Printf("ConnectorKit v%s\n", serverVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		p, err := strconv.Atoi(*port)
		if err != nil {
			log.Fatalf("Invalid --port value %q: %v", *port, err)
		}
		cfg.Server.Port = p
	}

	registry := connector.NewRegistry(nil)
	credentials := make(map[string]map[string]string)
	for name, cc := range cfg.Connectors {
		if !cc.Enabled {
			continue
		}
		switch name {
		case vault.ConnectorName:
			if err := registry.Register(vault.New(cc.BaseURL)); err != nil {
				log.Fatalf("Failed to register connector '%s': %v", name, err)
			}
		default:
			log.Printf("Warning: unknown connector '%s' in configuration, skipping", name)
			continue
		}
		credentials[name] = cc.Credentials
		log.Printf("Registered connector '%s' (upstream %s)", name, cc.BaseURL)
	}

	sessions := session.NewStore(cfg.Session.TTL, cfg.Session.CacheTTL)
	stopSweeper := sessions.StartSweeper(cfg.Session.TTL)
	defer stopSweeper()

	if *stdio {
		// A stdio server is one agent session for its whole lifetime.
		sess := sessions.Create()
		agent := agentrpc.NewServer(registry, credentials, sess, agentrpc.ServerInfo{
			Name:    "connectorkit",
			Version: serverVersion,
		})
		if err := agent.ServeStdio(context.Background(), os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Stdio server failed: %v", err)
		}
		return
	}

	agent := agentrpc.NewServer(registry, credentials, nil, agentrpc.ServerInfo{
		Name:    "connectorkit",
		Version: serverVersion,
	})

	// Initialize Gin router
	router := gin.Default()

	// Setup API routes
	api.SetupRoutes(router, registry, sessions, agent)

	// Start the server
	log.Printf("Starting server on port %d...", cfg.Server.Port)
	if err := newHTTPServer(cfg.Server, router).ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newHTTPServer builds the HTTP server with the configured address and
// timeouts applied.
func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
