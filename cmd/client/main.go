// Package main runs the patient portal terminal client over a local JSON
// storage file.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stjohnsmed/patientportal/internal/client/cli"
	"github.com/stjohnsmed/patientportal/internal/config"
	"github.com/stjohnsmed/patientportal/internal/logger"
	"github.com/stjohnsmed/patientportal/internal/repository"
	"github.com/stjohnsmed/patientportal/internal/service"
	"github.com/stjohnsmed/patientportal/internal/storage"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		storagePath string
		logLevel    string
		timeout     = config.Duration(config.DefaultSessionTimeout)
		showVer     bool
	)

	flag.StringVar(&storagePath, "storage", config.DefaultStorageFile, "path to the local storage file")
	flag.StringVar(&logLevel, "log", "error", "log level")
	flag.Var(&timeout, "timeout", "session timeout, e.g. 15m")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Patient Portal Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	fs := storage.NewFileStorage(storagePath)
	if err := fs.Load(); err != nil {
		zapLogger.Warn("storage file unreadable, starting empty", zap.String("path", storagePath), zap.Error(err))
	}

	accounts := service.NewCredentialStore(repository.NewStorageAccountRepository(fs, zapLogger), zapLogger)
	app := cli.NewApp(cli.Deps{
		Accounts:       accounts,
		Sessions:       repository.NewSessionRepository(fs, zapLogger),
		SessionTimeout: timeout.Std(),
		LoginDelay:     time.Second,
		SignupDelay:    1500 * time.Millisecond,
		Log:            zapLogger,
	}, os.Stdin, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		zapLogger.Error("client stopped", zap.Error(err))
	}
}
