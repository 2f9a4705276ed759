package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/subculture/internal/config"
	"github.com/linemk/subculture/internal/lib/inflight"
	"github.com/linemk/subculture/internal/lib/logger"
	"github.com/linemk/subculture/internal/remote"
	"github.com/linemk/subculture/internal/session"
	"github.com/linemk/subculture/internal/web"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting web", slog.String("env", cfg.Env))

	// один http клиент на все шлюзы, таймаут из конфига
	httpClient := remote.NewHTTPClient(cfg.Gateways.Timeout)

	deps := web.Deps{
		Log:                log,
		Sessions:           session.NewController(cfg.Session),
		Auth:               remote.NewAuthClient(log, httpClient, cfg.Gateways.AuthURL),
		Gifts:              remote.NewGiftClient(log, httpClient, cfg.Gateways.GiftsURL),
		Admin:              remote.NewAdminClient(log, httpClient, cfg.Gateways.AdminURL),
		Guard:              inflight.New(),
		ShowPasswordHashes: cfg.Admin.ShowPasswordHashes,
	}
	// шлюз ежедневной награды необязателен
	if cfg.Gateways.RewardsURL != "" {
		deps.Rewards = remote.NewRewardClient(log, httpClient, cfg.Gateways.RewardsURL)
	}

	router, err := web.NewRouter(deps, web.CSRFOptions{
		Key:    []byte(cfg.CSRF.Key),
		Secure: cfg.CSRF.Secure,
	})
	if err != nil {
		log.Error("failed to build router", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to build router"))
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
