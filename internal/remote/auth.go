package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linemk/subculture/internal/domain/models"
)

const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authUser struct {
	ID       int64  `json:"id" validate:"gt=0"`
	Username string `json:"username" validate:"required"`
	Balance  int    `json:"balance" validate:"gte=0"`
	IsAdmin  bool   `json:"is_admin"`
}

type authResponse struct {
	Success bool      `json:"success"`
	User    *authUser `json:"user"`
	Error   string    `json:"error"`
}

// AuthClient — клиент шлюза аутентификации
type AuthClient struct {
	client
}

func NewAuthClient(log *slog.Logger, httpClient *http.Client, url string) *AuthClient {
	return &AuthClient{client: newClient(log, httpClient, url)}
}

// Login входит под существующим пользователем
func (a *AuthClient) Login(ctx context.Context, username, password string) (*models.User, error) {
	return a.submit(ctx, ActionLogin, username, password)
}

// Register создает пользователя и сразу возвращает его профиль
func (a *AuthClient) Register(ctx context.Context, username, password string) (*models.User, error) {
	return a.submit(ctx, ActionRegister, username, password)
}

func (a *AuthClient) submit(ctx context.Context, action, username, password string) (*models.User, error) {
	const op = "remote.AuthClient.submit"

	var resp authResponse
	status, err := a.post(ctx, authRequest{Action: action, Username: username, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, action, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s: %w", op, action, rejected(status, resp.Error))
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%s: %s: %w: user is missing", op, action, ErrBadResponse)
	}
	if err := checkPayload(resp.User); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, action, err)
	}

	return &models.User{
		ID:       resp.User.ID,
		Username: resp.User.Username,
		Balance:  resp.User.Balance,
		IsAdmin:  resp.User.IsAdmin,
	}, nil
}
