// catalogd is the catalog service daemon: it accepts product submissions
// while offline, stores them durably, and syncs them to the remote product
// service in the background.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/swipeapp/catalog/cmd/catalogd/handlers"
	"github.com/swipeapp/catalog/internal/api"
	"github.com/swipeapp/catalog/internal/config"
	"github.com/swipeapp/catalog/internal/db"
	"github.com/swipeapp/catalog/internal/logging"
	"github.com/swipeapp/catalog/internal/media"
	"github.com/swipeapp/catalog/internal/service"
	"github.com/swipeapp/catalog/internal/sync"
	"github.com/swipeapp/catalog/internal/sync/scheduler"
	"github.com/swipeapp/catalog/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logging.Init(os.Stdout, logLevel(cfg.LogLevel))

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logging.Error("Failed to open database", err, nil)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.NewMigrator(database.DB).Up(); err != nil {
		logging.Error("Failed to run migrations", err, nil)
		os.Exit(1)
	}

	store := db.NewRepository(database.DB)
	defer store.Close()

	images, err := media.NewStore(cfg.DataDir)
	if err != nil {
		logging.Error("Failed to initialize media store", err, nil)
		os.Exit(1)
	}

	client := api.NewClient(&api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	})

	worker := sync.NewWorker(store, client, images)
	// Rows left mid-upload by a crash must not stay SYNCING forever.
	if _, err := worker.Reconcile(); err != nil {
		logging.Error("Startup reconciliation failed", err, nil)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(worker, &scheduler.Config{
		Interval: cfg.SyncInterval,
		Flex:     cfg.SyncFlex,
	})
	sched.Start(ctx)

	svc := service.NewCatalogService(store, images, client, sched)

	productHandler := handlers.NewProductHandler(svc)
	syncHandler := handlers.NewSyncHandler(worker, sched, svc)
	healthHandler := handlers.NewHealthHandler(database.DB)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", productHandler.List)
	mux.HandleFunc("POST /products", productHandler.Create)
	mux.HandleFunc("GET /queue", productHandler.Queue)
	mux.HandleFunc("GET /sync/status", syncHandler.GetStatus)
	mux.HandleFunc("POST /sync/now", syncHandler.TriggerSync)
	mux.HandleFunc("POST /sync/online", syncHandler.SetOnline)
	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.Handle("GET /metrics", telemetry.Handler())

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logging.Info("Server listening", map[string]interface{}{
			"addr":     cfg.ListenAddr,
			"data_dir": cfg.DataDir,
			"api_base": cfg.APIBaseURL,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Server failed", err, nil)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("Shutdown signal received", nil)

	// Stop taking new work, let the in-flight cycle finish, then stop HTTP.
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server shutdown failed", err, nil)
	}

	logging.Info("Shutdown complete", nil)
}

func logLevel(s string) logging.LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	}
	return logging.LevelInfo
}
