package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"survey_backend/internal/app/di"
	"survey_backend/internal/platform/config"
	infradb "survey_backend/internal/platform/db"
	infraredis "survey_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// db
	db, err := infradb.Open(cfg.Database, 60*time.Second)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Println("[ERROR] Failed to close database:", err)
		}
	}()

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		tmp, err := infraredis.NewRedisClient(pingCtx, cfg.Redis.Config)
		cancel()
		if err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	app, err := di.NewApp(cfg, db, rdb)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if cfg.Auth.AdminUsername != "" {
		created, err := app.Admins.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if created {
			log.Printf("admin user %q created", cfg.Auth.AdminUsername)
		}
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server starting on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server Shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
