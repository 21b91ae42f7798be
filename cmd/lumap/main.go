// Package main is the entry point for the lumap viewer server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brandonlukas/lumap/internal/api"
	"github.com/brandonlukas/lumap/internal/cache"
	"github.com/brandonlukas/lumap/internal/config"
	"github.com/brandonlukas/lumap/internal/data/bundle"
	"github.com/brandonlukas/lumap/internal/render"
	"github.com/brandonlukas/lumap/internal/service"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "config/lumap.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if baseURL := os.Getenv("LUMAP_BASE_URL"); baseURL != "" {
		cfg.Data.BaseURL = baseURL
	}

	log.Printf("Starting lumap server on port %d", cfg.Server.Port)

	ctx := context.Background()

	client, err := bundle.NewClient(cfg.Data.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create bundle client: %v", err)
	}
	defer client.Close()

	log.Printf("Loading bundle from %s", cfg.Data.BaseURL)
	dataset, err := client.Load(ctx, bundle.LoadOptions{
		PreloadVariants: cfg.Data.PreloadVariants,
	})
	if err != nil {
		log.Fatalf("Failed to load bundle: %v", err)
	}
	log.Printf("Loaded %d points, %d attribute(s)", dataset.NumPoints, dataset.Catalog.Len())
	if name, ok := dataset.Catalog.ResolveDefault(); ok {
		log.Printf("Default attribute: %s", name)
	} else {
		log.Printf("No default attribute, starting in base-color mode")
	}

	cacheManager, err := cache.NewManager(cache.Config{
		SnapshotSizeMB: cfg.Cache.SnapshotSizeMB,
		SnapshotTTL:    time.Duration(cfg.Cache.SnapshotTTLMinutes) * time.Minute,
		VariantEntries: cfg.Cache.VariantCacheEntries,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	renderer := render.NewSnapshotRenderer(render.Config{
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		PointSize:  cfg.Render.PointSize,
		Background: cfg.Render.Background,
	})

	viewerService, err := service.NewViewerService(service.ViewerServiceConfig{
		Dataset:        dataset,
		Fetcher:        client,
		Cache:          cacheManager,
		Renderer:       renderer,
		SnapshotWidth:  cfg.Render.Width,
		SnapshotHeight: cfg.Render.Height,
	})
	if err != nil {
		log.Fatalf("Failed to initialize viewer service: %v", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Service:     viewerService,
		CacheStats:  cacheManager.Stats,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
