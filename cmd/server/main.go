package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriapp/internal/config"
	"nutriapp/internal/handler"
	"nutriapp/internal/hub"
	"nutriapp/internal/live"
	"nutriapp/internal/loader"
	"nutriapp/internal/metrics"
	"nutriapp/internal/repository/sqlite"
	"nutriapp/internal/service"
	"nutriapp/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	writeConfig := flag.Bool("write-config", false, "Write the effective config to -config (default: user config dir) and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting NutriApp server...")

	cfg, cfgSource, err := loadConfig(*configPath, *writeConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *writeConfig {
		path, err := writeConfigFile(*configPath, cfg)
		if err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("Config written to %s", path)
		return
	}
	if cfgSource == "" {
		cfgSource = "defaults"
	}
	log.Printf("Config loaded from %s: %s", cfgSource, cfg.Summary())

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s (created: %t)", cfg.Database.Path, repo.Created())

	// Metrics
	recorder := metrics.New()
	registry := live.NewRegistry()

	// Initialize the write worker
	writer := service.NewWriter(cfg.Writer.QueueSize, cfg.WriteTimeout())
	if cfg.MetricsEnabled() {
		writer.SetMetrics(recorder)
		registry.SetMetrics(recorder)
	}
	writer.Start()
	defer writer.Close()

	// Initialize event bus and service
	eventBus := service.NewEventBus()
	catalogSvc := service.NewCatalogService(repo, registry, writer, eventBus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SeedDefaults() {
		res, err := catalogSvc.SeedDefaults().Wait(ctx)
		if err != nil || !res.OK() {
			log.Printf("Warning: Failed to seed default ingredients: %s %v", res.Message, res.Err)
		}
	}

	// Seed catalog file
	if cfg.Seed.Path != "" {
		seeder := loader.NewSeeder(cfg.Seed.Path, catalogSvc)
		if _, err := seeder.Load(ctx); err != nil {
			log.Printf("Warning: Failed to load seed catalog: %v", err)
		}

		if cfg.Seed.Watch {
			w := watcher.New(seeder.Path(), seeder.Reload)
			go func() {
				if err := w.Watch(ctx); err != nil {
					log.Printf("Seed watcher stopped: %v", err)
				}
			}()
		}
	}

	// Initialize SSE hub and connect the event bus to it
	sseHub := hub.New()
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, eventBus)

	mux := http.NewServeMux()
	handler.NewCatalogHandler(catalogSvc).Register(mux)

	mux.Handle("GET /events", sseHub)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","subscriptions":%d,"clients":%d}`+"\n", registry.Count(), sseHub.ClientCount())
	})
	if cfg.MetricsEnabled() {
		mux.Handle("GET /metrics", recorder.Handler())
	}

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := newServer(ctx, cfg.Server.Addr, finalHandler)

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Ends live streams, the hub and the seed watcher; request contexts
	// derive from ctx so open streams do not hold up Shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// newServer builds the HTTP server. Every request context derives from ctx,
// so cancelling ctx ends long-lived streams.
func newServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

// loadConfig reads the config from path, or searches the standard locations
// when path is empty. With allowMissing a nonexistent path yields defaults,
// which is how -write-config creates a new file.
func loadConfig(path string, allowMissing bool) (*config.Config, string, error) {
	if path == "" {
		return config.Load()
	}
	if allowMissing {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.DefaultConfig(), "", nil
		}
	}
	return config.LoadFromPath(path)
}

// writeConfigFile saves cfg to path, or to the user config location when
// path is empty, and returns where it was written
func writeConfigFile(path string, cfg *config.Config) (string, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := cfg.Save(path); err != nil {
		return path, err
	}
	return path, nil
}
