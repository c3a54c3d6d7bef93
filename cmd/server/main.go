// Package main initializes and starts the patient portal HTTP server,
// setting up configuration, logging, storage, services, handlers and
// optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/config"
	"github.com/stjohnsmed/patientportal/internal/db"
	"github.com/stjohnsmed/patientportal/internal/logger"
	"github.com/stjohnsmed/patientportal/internal/repository"
	"github.com/stjohnsmed/patientportal/internal/server/handler/http"
	"github.com/stjohnsmed/patientportal/internal/service"
	"github.com/stjohnsmed/patientportal/internal/storage"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// backend is the persistence chosen by configuration.
type backend struct {
	accounts service.AccountRepository
	sessions func(clientID string) service.SessionStore
	db       *sql.DB
}

func openBackend(options *config.Options, log *zap.Logger) (*backend, error) {
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		items := storage.NewPostgresStorage(postgresDB)
		return &backend{
			accounts: repository.NewPostgresAccountRepository(postgresDB),
			sessions: func(id string) service.SessionStore {
				return repository.NewSessionRepository(items.WithNamespace(id), log)
			},
			db: postgresDB,
		}, nil
	}

	fs := storage.NewFileStorage(options.StorageFile)
	if err := fs.Load(); err != nil {
		log.Warn("storage file unreadable, starting empty", zap.String("path", options.StorageFile), zap.Error(err))
	}
	return &backend{
		accounts: repository.NewStorageAccountRepository(fs, log),
		sessions: func(id string) service.SessionStore {
			return repository.NewSessionRepository(storage.Prefixed(fs, id), log)
		},
	}, nil
}

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init storage", zap.Error(err))
	}
	if store.db != nil {
		defer store.db.Close()
		db.StartExpiredSessionCleaner(ctx, store.db, time.Minute, zapLogger)
	}

	// Business-logic services.
	timeout := options.SessionTimeout.Std()
	accounts := service.NewCredentialStore(store.accounts, zapLogger)
	sessions := service.NewSessionManager(timeout, zapLogger)
	signupDelay := options.SignupDelay.Std()

	registry := service.NewClientRegistry(func(id string) *service.Client {
		return &service.Client{
			ID:       id,
			Sessions: store.sessions(id),
			Wizard:   service.NewWizard(accounts, signupDelay, zapLogger),
		}
	})
	registry.StartSweeper(ctx, time.Minute, options.ClientIdle.Std(), zapLogger)

	// HTTP handlers and router.
	authHandler := &http.AuthHandler{
		Clients:        registry,
		LoginService:   service.NewLoginService(accounts, sessions, options.LoginDelay.Std(), zapLogger),
		SessionService: sessions,
		Log:            zapLogger,
	}
	signupHandler := &http.SignupHandler{Clients: registry, Log: zapLogger}
	portalHandler := &http.PortalHandler{
		Clients:          registry,
		DashboardService: service.NewDashboard(sessions, zapLogger),
		SessionService:   sessions,
		Log:              zapLogger,
	}
	router := http.NewRouter(authHandler, signupHandler, portalHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
