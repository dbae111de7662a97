package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/cartodev/carto/internal/api"
	"github.com/cartodev/carto/internal/catalog"
	"github.com/cartodev/carto/internal/config"
	"github.com/cartodev/carto/internal/importer"
	"github.com/cartodev/carto/internal/log"
	"github.com/cartodev/carto/internal/parser"
	"github.com/cartodev/carto/internal/pricetracking"
	"github.com/cartodev/carto/internal/scraping"
	"github.com/cartodev/carto/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Store
	switch cfg.Storage.Backend {
	case "redis":
		redisStore, err := storage.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		store = redisStore
	default:
		fileStore, err := storage.NewFileStore(cfg.Storage.FilePath)
		if err != nil {
			logger.Error("failed to open data file", "error", err)
			os.Exit(1)
		}
		store = fileStore
	}

	cat, err := catalog.NewService(ctx, store, cfg.Catalog, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	scrapingClient := scraping.NewClient(cfg.Scraping, logger)
	priceClient := pricetracking.NewClient(cfg.PriceTracking, logger)
	session := importer.NewSession(importer.New(scrapingClient, parser.NewRetailerParser(), logger))

	handlers := api.NewHandlers(cat, session, priceClient, store, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// The UI shell runs on a local dev port.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","products":%d}`, len(cat.List()))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.ListProducts)
			r.Post("/", handlers.CreateProduct)
			r.Post("/batch-delete", handlers.BatchDelete)
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", handlers.GetProduct)
				r.Put("/", handlers.UpdateProduct)
				r.Delete("/", handlers.DeleteProduct)
				r.Post("/bought", handlers.MarkBought)
				r.Get("/price-history", handlers.GetPriceHistory)
			})
		})
		r.Post("/import", handlers.ImportDraft)
		r.Get("/analytics", handlers.GetAnalytics)
		r.Get("/settings", handlers.GetSettings)
		r.Put("/settings", handlers.UpdateSettings)
		r.Get("/export", handlers.ExportData)
		r.Post("/import-data", handlers.ImportData)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr, "storage", cfg.Storage.Backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
