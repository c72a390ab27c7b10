package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sir_venger/dataset_lite/internal/app/datasethttp"
	"github.com/sir_venger/dataset_lite/internal/auth"
	"github.com/sir_venger/dataset_lite/internal/config"
	"github.com/sir_venger/dataset_lite/internal/repo"
	"github.com/sir_venger/dataset_lite/internal/usecase/datasetsvc"
)

// main инициализирует Data Set API сервис и обеспечивает корректное
// завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("jwt_secret is not configured")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if err := os.MkdirAll(cfg.DataFolder, 0o755); err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	svc := datasetsvc.New(datasetsvc.Deps{
		Store:      store,
		DataFolder: cfg.DataFolder,
		Log:        logger,
	})

	gate := auth.NewGate([]byte(cfg.JWTSecret), logger)
	api := datasethttp.NewServer(svc, gate.Middleware(), datasethttp.Options{
		APIPrefix:               cfg.APIPrefix,
		AllowPublicBinaryAccess: cfg.AllowPublicBinaryAccess,
	}, logger)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("data set API listening",
		slog.String("addr", cfg.ListenAddr),
		slog.String("prefix", cfg.APIPrefix),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	stop()
}

// buildStore выбирает реализацию хранилища: Postgres при заданном DSN,
// иначе встроенный BadgerDB.
func buildStore(cfg *config.Config, logger *slog.Logger) (repo.Store, func(), error) {
	if cfg.MetaDSN != "" {
		pg, err := repo.OpenPostgres(context.Background(), cfg.MetaDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	bs, err := repo.OpenBadger(cfg.StorePath, logger)
	if err != nil {
		return nil, nil, err
	}
	return bs, func() { _ = bs.Close() }, nil
}
