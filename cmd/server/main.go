// Package main initializes and starts the disclosure workflow server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/keyharmony/keyharmony/internal/config"
	"github.com/keyharmony/keyharmony/internal/db"
	"github.com/keyharmony/keyharmony/internal/logger"
	"github.com/keyharmony/keyharmony/internal/repository"
	"github.com/keyharmony/keyharmony/internal/server/handler/http"
	"github.com/keyharmony/keyharmony/internal/service"
	"github.com/keyharmony/keyharmony/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	if version == "" {
		version = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	fmt.Printf("Build version: %s\n", version)
	fmt.Printf("Build date: %s\n", buildDate)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Pick the session store: Redis when configured, in-memory otherwise.
	var sessions session.Store
	if options.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore, err := session.NewRedisStore(ctx, options.RedisAddr)
		cancel()
		if err != nil {
			zapLogger.Fatal("cannot init redis session store", zap.Error(err))
		}
		sessions = redisStore
		zapLogger.Info("using redis session store", zap.String("addr", options.RedisAddr))
	} else {
		sessions = session.NewMemoryStore()
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	requestRepo := repository.NewPostgresRequestRepository(postgresDB)
	secretRepo := repository.NewPostgresSecretRepository(postgresDB)
	auditRepo := repository.NewPostgresAuditRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, sessions)
	lifecycle := service.NewLifecycleService(requestRepo, secretRepo, auditRepo, service.NewOutbox())

	// Create HTTP handlers for the API surface.
	authHandler := &http.AuthHandler{AuthService: authService}
	requestHandler := &http.RequestHandler{Lifecycle: lifecycle}
	viewHandler := &http.ViewHandler{Views: lifecycle}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, requestHandler, viewHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Address,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
