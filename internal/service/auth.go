package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/subculture/internal/domain/models"
	"github.com/linemk/subculture/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	log          *slog.Logger
	userRepo     storage.UserStorage
	startBalance int
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, startBalance int) AuthService {
	return &authService{
		log:          log,
		userRepo:     userRepo,
		startBalance: startBalance,
	}
}

// Register создает пользователя со стартовым балансом.
// Пароль хэшируется через bcrypt, соль добавляется автоматически.
func (a *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	const op = "service.AuthService.Register"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Username:     username,
		PasswordHash: string(passHash),
		Balance:      a.startBalance,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("username already taken")
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, nil
}

// Login сверяет пароль с сохраненным хэшем. Забаненный пользователь не входит.
func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(slog.String("op", op), slog.String("username", username))

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if user.IsBanned {
		logger.Warn("banned user tried to log in")
		return nil, fmt.Errorf("%s: %w", op, ErrUserBanned)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return user, nil
}
