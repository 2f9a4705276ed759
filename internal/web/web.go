// Package web рендерит страницы на сервере: лендинг, вход, путешествие и админку.
// Вся бизнес-логика живет за удаленными шлюзами, страницы только ходят в них
// и показывают ответы.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/lib/inflight"
	"github.com/linemk/subculture/internal/lib/logger/handlers/urllog"
	"github.com/linemk/subculture/internal/remote"
	"github.com/linemk/subculture/internal/session"
)

type AuthGateway interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type GiftGateway interface {
	List(ctx context.Context, userID int64) ([]models.Gift, error)
	Purchase(ctx context.Context, userID, giftID int64) (int, error)
	AddGift(ctx context.Context, adminUsername string, gift remote.NewGift) (string, error)
}

type AdminGateway interface {
	ListUsers(ctx context.Context, adminUsername string) ([]models.User, error)
	AddCoins(ctx context.Context, adminUsername, targetUsername string, coins int) (string, error)
	SetBanStatus(ctx context.Context, adminUsername, targetUsername string, banned bool) (string, error)
	SetAdminStatus(ctx context.Context, adminUsername, targetUsername string, isAdmin bool) (string, error)
}

// RewardGateway необязателен: без него блок ежедневной награды не показывается
type RewardGateway interface {
	Status(ctx context.Context, userID int64) (*models.RewardStatus, error)
	Claim(ctx context.Context, userID int64) (int, int, error)
}

// Deps — все, что нужно экранам
type Deps struct {
	Log                *slog.Logger
	Sessions           *session.Controller
	Auth               AuthGateway
	Gifts              GiftGateway
	Admin              AdminGateway
	Rewards            RewardGateway
	Guard              *inflight.Guard
	ShowPasswordHashes bool
}

// CSRFOptions настройка gorilla/csrf
type CSRFOptions struct {
	Key    []byte
	Secure bool
}

// Views — собранные экраны приложения
type Views struct {
	Landing *LandingView
	Auth    *AuthView
	Journey *JourneyView
	Admin   *AdminView
}

// NewViews собирает экраны; контроллер сессии передается каждому экрану явно
func NewViews(deps Deps) (*Views, error) {
	rd, err := newRenderer()
	if err != nil {
		return nil, err
	}
	content, err := loadContent()
	if err != nil {
		return nil, err
	}
	if deps.Guard == nil {
		deps.Guard = inflight.New()
	}

	return &Views{
		Landing: NewLandingView(deps.Log, deps.Sessions, rd, content),
		Auth:    NewAuthView(deps.Log, deps.Sessions, rd, deps.Auth),
		Journey: NewJourneyView(deps.Log, deps.Sessions, rd, content, deps.Gifts, deps.Rewards, deps.Guard),
		Admin:   NewAdminView(deps.Log, deps.Sessions, rd, deps.Admin, deps.Gifts, deps.Guard, deps.ShowPasswordHashes),
	}, nil
}

// NewRouter регистрирует маршруты страниц и форм
func NewRouter(deps Deps, csrfOpts CSRFOptions) (http.Handler, error) {
	views, err := NewViews(deps)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(deps.Log))
	router.Use(middleware.Recoverer)
	router.Use(deps.Sessions.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Group(func(r chi.Router) {
		r.Use(csrf.Protect(
			csrfOpts.Key,
			csrf.Secure(csrfOpts.Secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(csrfFailureHandler(deps.Log)),
		))

		r.Get("/", views.Landing.Show)

		r.Get("/auth", views.Auth.Show)
		r.Post("/auth", views.Auth.Submit)

		r.Get("/journey", views.Journey.Show)
		r.Post("/journey/purchase", views.Journey.Purchase)
		r.Post("/journey/reward", views.Journey.ClaimReward)
		r.Post("/logout", views.Journey.Logout)

		r.Get("/admin", views.Admin.Show)
		r.Post("/admin/coins", views.Admin.AddCoins)
		r.Post("/admin/ban", views.Admin.SetBanStatus)
		r.Post("/admin/role", views.Admin.SetAdminStatus)
		r.Post("/admin/gifts", views.Admin.AddGift)
	})

	return router, nil
}

// csrfFailureHandler — форма пришла без валидного токена (например, устарела вкладка)
func csrfFailureHandler(log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Warn("csrf check failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", csrf.FailureReason(r)),
		)
		session.Flash(w, session.Failure("Ошибка", "Форма устарела, попробуйте еще раз"))
		http.Redirect(w, r, pageFor(r.URL.Path), http.StatusSeeOther)
	})
}

// pageFor возвращает страницу, с которой была отправлена форма
func pageFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/admin"):
		return "/admin"
	case strings.HasPrefix(path, "/journey"), path == "/logout":
		return "/journey"
	case strings.HasPrefix(path, "/auth"):
		return "/auth"
	default:
		return "/"
	}
}
