package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/storage"
)

type GiftService interface {
	List(ctx context.Context, userID int64) ([]models.Gift, error)
	Purchase(ctx context.Context, userID, giftID int64) (int, error)
	AddGift(ctx context.Context, adminUsername string, gift models.Gift) (int64, error)
}

type giftService struct {
	log          *slog.Logger
	db           *sql.DB
	userRepo     storage.UserStorage
	giftRepo     storage.GiftStorage
	purchaseRepo storage.PurchaseStorage
}

func NewGiftService(
	log *slog.Logger,
	db *sql.DB,
	userRepo storage.UserStorage,
	giftRepo storage.GiftStorage,
	purchaseRepo storage.PurchaseStorage,
) GiftService {
	return &giftService{
		log:          log,
		db:           db,
		userRepo:     userRepo,
		giftRepo:     giftRepo,
		purchaseRepo: purchaseRepo,
	}
}

func (s *giftService) List(ctx context.Context, userID int64) ([]models.Gift, error) {
	const op = "service.GiftService.List"

	gifts, err := s.giftRepo.ListGifts(ctx, userID)
	if err != nil {
		s.log.Error("failed to list gifts", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return gifts, nil
}

// Purchase списывает цену подарка и записывает покупку.
// Если что-то идет не так, транзакция откатывается
func (s *giftService) Purchase(ctx context.Context, userID, giftID int64) (int, error) {
	const op = "service.GiftService.Purchase"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("giftID", giftID))
	logger.Info("starting purchase transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	user, err := s.userRepo.LockUserByIDTx(ctx, tx, userID)
	if err != nil {
		rollback()
		logger.Warn("failed to get user", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	gift, err := s.giftRepo.GetGiftByIDTx(ctx, tx, giftID)
	if err != nil {
		rollback()
		logger.Warn("failed to get gift", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if user.Balance < gift.Price {
		rollback()
		logger.Warn("insufficient funds", slog.Int("balance", user.Balance), slog.Int("price", gift.Price))
		return 0, fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
	}

	owned, err := s.purchaseRepo.HasPurchaseTx(ctx, tx, userID, giftID)
	if err != nil {
		rollback()
		logger.Error("failed to check purchase", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to check purchase: %w", op, err)
	}
	if owned {
		rollback()
		logger.Warn("gift already purchased")
		return 0, fmt.Errorf("%s: %w", op, ErrAlreadyPurchased)
	}

	newBalance := user.Balance - gift.Price
	if err := s.userRepo.UpdateUserBalance(ctx, tx, userID, newBalance); err != nil {
		rollback()
		logger.Error("failed to update user balance", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to update user balance: %w", op, err)
	}

	if err := s.purchaseRepo.CreatePurchaseTx(ctx, tx, userID, giftID); err != nil {
		rollback()
		logger.Error("failed to record purchase", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("purchase completed successfully", slog.Int("newBalance", newBalance))
	return newBalance, nil
}

// AddGift добавляет подарок в каталог от имени администратора
func (s *giftService) AddGift(ctx context.Context, adminUsername string, gift models.Gift) (int64, error) {
	const op = "service.GiftService.AddGift"
	logger := s.log.With(slog.String("op", op), slog.String("admin", adminUsername))

	if err := requireAdmin(ctx, s.userRepo, adminUsername); err != nil {
		logger.Warn("admin check failed", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.giftRepo.CreateGift(ctx, &gift)
	if err != nil {
		logger.Error("failed to create gift", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create gift: %w", op, err)
	}

	logger.Info("gift added", slog.Int64("giftID", id), slog.String("name", gift.Name))
	return id, nil
}
