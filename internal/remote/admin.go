package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/linemk/subculture/internal/domain/models"
)

const (
	ActionAddCoins   = "add_coins"
	ActionBanUser    = "ban_user"
	ActionGrantAdmin = "grant_admin"
)

type adminUser struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Username  string    `json:"username" validate:"required"`
	Password  string    `json:"password"`
	Balance   int       `json:"balance"`
	IsAdmin   bool      `json:"is_admin"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt timestamp `json:"created_at"`
}

type usersResponse struct {
	Users []adminUser `json:"users" validate:"dive"`
}

// adminCommand — тело POST запроса; заполняется только поле своей команды
type adminCommand struct {
	Action         string `json:"action"`
	AdminUsername  string `json:"admin_username"`
	TargetUsername string `json:"target_username"`
	Coins          *int   `json:"coins,omitempty"`
	Ban            *bool  `json:"ban,omitempty"`
	Grant          *bool  `json:"grant,omitempty"`
}

type commandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// AdminClient — клиент административного шлюза.
// Права проверяет сам шлюз по admin_username.
type AdminClient struct {
	client
}

func NewAdminClient(log *slog.Logger, httpClient *http.Client, url string) *AdminClient {
	return &AdminClient{client: newClient(log, httpClient, url)}
}

// ListUsers возвращает всех пользователей. Отказ шлюза означает, что у
// adminUsername нет прав администратора.
func (a *AdminClient) ListUsers(ctx context.Context, adminUsername string) ([]models.User, error) {
	const op = "remote.AdminClient.ListUsers"

	var resp usersResponse
	if _, err := a.get(ctx, url.Values{"admin_username": {adminUsername}}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkPayload(&resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]models.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, models.User{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: u.Password,
			Balance:      u.Balance,
			IsAdmin:      u.IsAdmin,
			IsBanned:     u.IsBanned,
			CreatedAt:    u.CreatedAt.Time,
		})
	}
	return users, nil
}

// AddCoins начисляет монеты пользователю
func (a *AdminClient) AddCoins(ctx context.Context, adminUsername, targetUsername string, coins int) (string, error) {
	return a.command(ctx, adminCommand{
		Action:         ActionAddCoins,
		AdminUsername:  adminUsername,
		TargetUsername: targetUsername,
		Coins:          &coins,
	})
}

// SetBanStatus банит или разбанивает пользователя
func (a *AdminClient) SetBanStatus(ctx context.Context, adminUsername, targetUsername string, banned bool) (string, error) {
	return a.command(ctx, adminCommand{
		Action:         ActionBanUser,
		AdminUsername:  adminUsername,
		TargetUsername: targetUsername,
		Ban:            &banned,
	})
}

// SetAdminStatus выдает или забирает права администратора
func (a *AdminClient) SetAdminStatus(ctx context.Context, adminUsername, targetUsername string, isAdmin bool) (string, error) {
	return a.command(ctx, adminCommand{
		Action:         ActionGrantAdmin,
		AdminUsername:  adminUsername,
		TargetUsername: targetUsername,
		Grant:          &isAdmin,
	})
}

func (a *AdminClient) command(ctx context.Context, cmd adminCommand) (string, error) {
	const op = "remote.AdminClient.command"

	var resp commandResponse
	status, err := a.post(ctx, cmd, &resp)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", op, cmd.Action, err)
	}
	if !resp.Success {
		return "", fmt.Errorf("%s: %s: %w", op, cmd.Action, rejected(status, resp.Error))
	}
	return resp.Message, nil
}
