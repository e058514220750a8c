// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"todolist/internal/config"
	"todolist/internal/db"
	"todolist/internal/db/migrations"
	"todolist/internal/routes"
	"todolist/internal/session"
)

func main() {
	cfg := config.Load()

	// Create database if it doesn't exist
	if err := db.CreateDatabaseIfNotExists(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to ensure database exists: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Sessions live in Redis when configured, otherwise in process memory
	// (single-instance development only).
	var sessions session.Store
	if cfg.RedisURL != "" {
		store, err := session.Connect(context.Background(), cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		sessions = store
		log.Println("Using redis session store")
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		log.Println("REDIS_URL not set, using in-memory session store")
	}

	router := routes.SetupRoutes(database.DB, cfg, sessions)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to finish current requests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
