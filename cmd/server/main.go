// Package main initializes and starts the credential manager backend,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/atinyakov/credkeeper/internal/config"
	"github.com/atinyakov/credkeeper/internal/db"
	"github.com/atinyakov/credkeeper/internal/logger"
	"github.com/atinyakov/credkeeper/internal/middleware"
	"github.com/atinyakov/credkeeper/internal/repository"
	"github.com/atinyakov/credkeeper/internal/server/handler/http"
	"github.com/atinyakov/credkeeper/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and reference data.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	if err := db.Seed(ctx, postgresDB, options.OrgUnits); err != nil {
		zapLogger.Fatal("cannot seed organisational units", zap.Error(err))
	}

	// Drop expired login sessions.
	db.StartSessionCleaner(ctx, postgresDB, time.Hour, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	credentialRepo := repository.NewPostgresCredentialRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, sessionRepo, options.SessionTTL.Duration, options.AdminUsername)
	directoryService := service.NewDirectoryService(userRepo, credentialRepo)
	credentialService := service.NewCredentialService(credentialRepo)

	// Register request metrics alongside the Go runtime collectors.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterDeps{
		Auth:        &http.AuthHandler{AuthService: authService, Logger: zapLogger},
		Directory:   &http.DirectoryHandler{DirectoryService: directoryService, Logger: zapLogger},
		Credentials: &http.CredentialHandler{CredentialService: credentialService, Logger: zapLogger},
		Metrics:     middleware.NewMetrics(registry),
		Gatherer:    registry,
		CORSOrigins: options.CORSOrigins,
		Logger:      zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLS() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
