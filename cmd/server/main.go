package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"fileflow/internal/api"
	"fileflow/internal/config"
	"fileflow/internal/db"
	"fileflow/internal/export"
	"fileflow/internal/folder"
	"fileflow/internal/ingestion"
	"fileflow/internal/job"
	"fileflow/internal/mapping"
	"fileflow/internal/middleware"
	"fileflow/internal/repository"
	"fileflow/internal/target"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load("./configs")
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.NewLogger(cfg.Log)

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.URL(), cfg.Data.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	configRepo := repository.NewConfigRepository(conn.Pool)
	logRepo := repository.NewImportLogRepository(conn.Pool)
	employeeRepo := repository.NewEmployeeRepository(conn.Pool)

	// Seed the default employees configuration
	if err := mapping.SeedDefaults(ctx, configRepo, cfg.Data.Dir); err != nil {
		log.Fatalf("Failed to seed configuration: %v", err)
	}

	// Wire the ingestion stack
	registry := mapping.NewRegistry(configRepo)
	folders := folder.NewManager(registry)

	handlers := target.NewRegistry()
	if err := handlers.Register(target.NewEmployeeHandler(employeeRepo)); err != nil {
		log.Fatalf("Failed to register target handler: %v", err)
	}

	pipeline := ingestion.NewPipeline(logRepo, log)
	ingestor := ingestion.NewService(registry, handlers, pipeline)
	counter := ingestion.NewCounter(registry)

	jobs := job.NewService(
		jobConfigSource{registry: registry, configs: configRepo},
		folders, counter, ingestor,
		job.NewProgressStore(), job.NewResultStore(), log)

	exporter := export.NewService(logRepo)

	server := api.NewServer(folders, jobs, configRepo, logRepo, employeeRepo, exporter, log)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := middleware.Logging(log)(corsHandler.Handler(server.Routes()))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

// jobConfigSource joins the config repository's existence check with the
// registry's path resolution for the job service.
type jobConfigSource struct {
	registry *mapping.Registry
	configs  repository.ConfigRepository
}

func (s jobConfigSource) Exists(ctx context.Context, configID string) (bool, error) {
	return s.configs.Exists(ctx, configID)
}

func (s jobConfigSource) FolderPaths(ctx context.Context, configID string) (folder.Paths, error) {
	return s.registry.FolderPaths(ctx, configID)
}
