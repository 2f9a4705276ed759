package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/storage"
)

type AdminService interface {
	ListUsers(ctx context.Context, adminUsername string) ([]models.User, error)
	AddCoins(ctx context.Context, adminUsername, target string, coins int) (string, error)
	SetBanStatus(ctx context.Context, adminUsername, target string, banned bool) (string, error)
	SetAdminStatus(ctx context.Context, adminUsername, target string, isAdmin bool) (string, error)
}

type adminService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
}

func NewAdminService(log *slog.Logger, userRepo storage.UserStorage) AdminService {
	return &adminService{log: log, userRepo: userRepo}
}

// requireAdmin пропускает только существующего администратора
func requireAdmin(ctx context.Context, userRepo storage.UserStorage, username string) error {
	user, err := userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrAccessDenied
		}
		return err
	}
	if !user.IsAdmin {
		return ErrAccessDenied
	}
	return nil
}

func (s *adminService) ListUsers(ctx context.Context, adminUsername string) ([]models.User, error) {
	const op = "service.AdminService.ListUsers"
	logger := s.log.With(slog.String("op", op), slog.String("admin", adminUsername))

	if err := requireAdmin(ctx, s.userRepo, adminUsername); err != nil {
		logger.Warn("admin check failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		logger.Error("failed to list users", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *adminService) AddCoins(ctx context.Context, adminUsername, target string, coins int) (string, error) {
	const op = "service.AdminService.AddCoins"
	logger := s.log.With(slog.String("op", op), slog.String("admin", adminUsername), slog.String("target", target))

	if err := requireAdmin(ctx, s.userRepo, adminUsername); err != nil {
		logger.Warn("admin check failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	balance, err := s.userRepo.AddCoins(ctx, target, coins)
	if err != nil {
		logger.Warn("failed to add coins", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("coins added", slog.Int("coins", coins), slog.Int("balance", balance))
	return fmt.Sprintf("Added %d coins to %s", coins, target), nil
}

func (s *adminService) SetBanStatus(ctx context.Context, adminUsername, target string, banned bool) (string, error) {
	const op = "service.AdminService.SetBanStatus"
	logger := s.log.With(slog.String("op", op), slog.String("admin", adminUsername), slog.String("target", target))

	if err := requireAdmin(ctx, s.userRepo, adminUsername); err != nil {
		logger.Warn("admin check failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.userRepo.SetBanned(ctx, target, banned); err != nil {
		logger.Warn("failed to change ban status", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	status := "unbanned"
	if banned {
		status = "banned"
	}
	logger.Info("ban status changed", slog.Bool("banned", banned))
	return fmt.Sprintf("User %s %s", target, status), nil
}

func (s *adminService) SetAdminStatus(ctx context.Context, adminUsername, target string, isAdmin bool) (string, error) {
	const op = "service.AdminService.SetAdminStatus"
	logger := s.log.With(slog.String("op", op), slog.String("admin", adminUsername), slog.String("target", target))

	if err := requireAdmin(ctx, s.userRepo, adminUsername); err != nil {
		logger.Warn("admin check failed", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.userRepo.SetAdmin(ctx, target, isAdmin); err != nil {
		logger.Warn("failed to change admin status", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	action := "revoked from"
	if isAdmin {
		action = "granted to"
	}
	logger.Info("admin status changed", slog.Bool("isAdmin", isAdmin))
	return fmt.Sprintf("Admin rights %s %s", action, target), nil
}
