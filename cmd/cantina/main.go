// Package main запускает HTTP-сервер шлюза заказов столовой.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/cantina-gateway/internal/config"
	"github.com/mmeshcher/cantina-gateway/internal/handler"
	"github.com/mmeshcher/cantina-gateway/internal/repository"
	"github.com/mmeshcher/cantina-gateway/internal/service"
	"github.com/mmeshcher/cantina-gateway/internal/spreadsheet"
	"github.com/mmeshcher/cantina-gateway/internal/viacep"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var store service.Store
	if cfg.DatabaseURI != "" {
		pgStore, err := repository.NewPostgresStore(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		store = pgStore
	} else {
		store = repository.NewFileStore(cfg.DBFile)
	}

	cepClient := viacep.NewClient(cfg.ViaCEPAddress)

	var orderLog service.OrderLog
	if cfg.SheetID != "" && cfg.KeyFile != "" {
		sheetsClient, err := spreadsheet.NewClient(context.Background(), cfg.SheetID, cfg.KeyFile)
		if err != nil {
			sugar.Fatalw("spreadsheet initialization error", "error", err.Error())
		}
		orderLog = sheetsClient
	} else {
		sugar.Warnw("order journal is not configured, order actions will fail",
			"sheetID", cfg.SheetID != "", "keyFile", cfg.KeyFile != "")
	}

	svc := service.NewService(store, cepClient, orderLog)
	defer svc.Close()

	h := handler.NewHandler(svc, logger)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting cantina gateway", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
