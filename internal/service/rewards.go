package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/storage"
)

type RewardService interface {
	Status(ctx context.Context, userID int64) (*models.RewardStatus, error)
	Claim(ctx context.Context, userID int64) (reward int, newBalance int, err error)
}

type rewardService struct {
	log        *slog.Logger
	db         *sql.DB
	rewardRepo storage.RewardStorage
	amount     int
	now        func() time.Time
}

func NewRewardService(log *slog.Logger, db *sql.DB, rewardRepo storage.RewardStorage, amount int) RewardService {
	return &rewardService{
		log:        log,
		db:         db,
		rewardRepo: rewardRepo,
		amount:     amount,
		now:        time.Now,
	}
}

// today — начало текущих суток в UTC, так же хранится в колонке DATE
func (s *rewardService) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

func claimedOn(last, today time.Time) bool {
	return !last.UTC().Truncate(24 * time.Hour).Before(today)
}

func (s *rewardService) Status(ctx context.Context, userID int64) (*models.RewardStatus, error) {
	const op = "service.RewardService.Status"

	last, ok, err := s.rewardRepo.LastClaimDate(ctx, userID)
	if err != nil {
		s.log.Error("failed to get last claim", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.RewardStatus{
		CanClaim:     !ok || !claimedOn(last, s.today()),
		RewardAmount: s.amount,
	}, nil
}

// Claim начисляет награду не чаще раза в сутки
func (s *rewardService) Claim(ctx context.Context, userID int64) (int, int, error) {
	const op = "service.RewardService.Claim"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	rollback := func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
	}

	today := s.today()
	last, ok, err := s.rewardRepo.LockLastClaimDateTx(ctx, tx, userID)
	if err != nil {
		rollback()
		logger.Error("failed to get last claim", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if ok && claimedOn(last, today) {
		rollback()
		logger.Warn("reward already claimed")
		return 0, 0, fmt.Errorf("%s: %w", op, ErrAlreadyClaimed)
	}

	newBalance, err := s.rewardRepo.AddBalanceTx(ctx, tx, userID, s.amount)
	if err != nil {
		rollback()
		logger.Warn("failed to add reward", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rewardRepo.SaveClaimTx(ctx, tx, userID, today); err != nil {
		rollback()
		logger.Error("failed to save claim", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("daily reward claimed", slog.Int("newBalance", newBalance))
	return s.amount, newBalance, nil
}
