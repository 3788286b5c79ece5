// Package server boots the application: configuration, logging, MongoDB,
// storage, the HTTP kernel, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/config"
	"github.com/bcardhq/bcard-api/internal/kernel"
	"github.com/bcardhq/bcard-api/pkg/database"
	"github.com/bcardhq/bcard-api/pkg/logger"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// Start boots everything and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx := context.Background()

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer database.Disconnect(context.Background(), db) //nolint:errcheck

	var extra []slog.Handler
	var mongoLogs *logger.MongoHandler
	if config.LogToMongo() {
		mongoLogs = logger.NewMongoHandler(db, config.LogMongoCollection())
		defer mongoLogs.Close()
		extra = append(extra, mongoLogs)
	}
	logger.Setup(config.Production(), extra...)

	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	disk, err := storage.Open(storage.Options{
		Driver:     config.StorageDisk(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	})
	if err != nil {
		return err
	}

	r := kernel.New(kernel.Options{
		JWTSecret:    config.JWTSecret(),
		AppKey:       config.AppKey(),
		SecureCookie: config.Production(),
		CORSOrigin:   config.CORSOrigin(),
		Users:        repositories.NewMongoUserRepository(db),
		Cards:        repositories.NewMongoCardRepository(db),
		Disk:         disk,
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
