package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/linemk/subculture/internal/app/handlers"
	"github.com/linemk/subculture/internal/config"
	"github.com/linemk/subculture/internal/service"
	"github.com/linemk/subculture/internal/storage"
)

type App struct {
	Config *config.GatewayConfig
	Logger *slog.Logger
	DB     *sql.DB
}

// QueryDSN собирает строку подключения к БД
func QueryDSN(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
	)
}

// NewApp создаёт новый экземпляр App
func NewApp(log *slog.Logger, cfg *config.GatewayConfig) (*App, error) {
	db, err := sql.Open("postgres", QueryDSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(log, cfg, db), nil
}

// New собирает App поверх уже открытого подключения
func New(log *slog.Logger, cfg *config.GatewayConfig, db *sql.DB) *App {
	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}
}

// Router связывает репозитории, сервисы и обработчики шлюзов
func (a *App) Router() http.Handler {
	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(a.DB)
	giftRepo := storage.NewGiftRepository(a.DB)
	purchaseRepo := storage.NewPurchaseRepository(a.DB)
	rewardRepo := storage.NewRewardRepository(a.DB)

	return handlers.NewRouter(a.Logger, handlers.Services{
		Auth:    service.NewAuthService(a.Logger, userRepo, a.Config.Economy.StartBalance),
		Gifts:   service.NewGiftService(a.Logger, a.DB, userRepo, giftRepo, purchaseRepo),
		Admin:   service.NewAdminService(a.Logger, userRepo),
		Rewards: service.NewRewardService(a.Logger, a.DB, rewardRepo, a.Config.Economy.DailyReward),
	})
}
