package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/app"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	baseLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	zlog := logger.WithService(baseLog, cfg.App)
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server exited with error", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return err
	}

	portal, err := app.New(ctx, cfg, zlog)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      portal.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("starting http server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := portal.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	zlog.Info("server stopped")
	return errors.Join(errs...)
}
