package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/subculture/internal/lib/logger/handlers/urllog"
	"github.com/linemk/subculture/internal/service"
)

// Services — бизнес-логика, которую обслуживают шлюзы
type Services struct {
	Auth    service.AuthService
	Gifts   service.GiftService
	Admin   service.AdminService
	Rewards service.RewardService
}

// NewRouter регистрирует эндпоинты шлюзов
func NewRouter(log *slog.Logger, svc Services) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.MethodNotAllowed(MethodNotAllowed)

	router.Post("/auth", AuthHandler(log, svc.Auth))

	router.Get("/gifts", ListGiftsHandler(log, svc.Gifts))
	router.Post("/gifts", GiftsCommandHandler(log, svc.Gifts))

	router.Get("/admin", ListUsersHandler(log, svc.Admin))
	router.Post("/admin", AdminCommandHandler(log, svc.Admin))

	router.Get("/daily-reward", RewardStatusHandler(log, svc.Rewards))
	router.Post("/daily-reward", ClaimRewardHandler(log, svc.Rewards))

	return router
}
